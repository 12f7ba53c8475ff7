package users

import "time"

type registerRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	Role            string `json:"role"`
	Name            string `json:"name"`
	Organization    string `json:"organization"`
	District        string `json:"district"`
	AreaOfOperation string `json:"areaOfOperation"`
	ContactNumber   string `json:"contactNumber"`
	Address         string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type profileRequest struct {
	Name            string `json:"name"`
	Organization    string `json:"organization"`
	District        string `json:"district"`
	AreaOfOperation string `json:"areaOfOperation"`
	ContactNumber   string `json:"contactNumber"`
	Address         string `json:"address"`
}

// UserView is the wire representation of an account. Password hashes never
// leave the service.
type UserView struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsApproved bool      `json:"isApproved"`
	Profile    Profile   `json:"profile"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type authResponse struct {
	Token string   `json:"token,omitempty"`
	User  UserView `json:"user"`
}

type listNGOsResponse struct {
	NGOs       []UserView `json:"ngos"`
	Pagination pageInfo   `json:"pagination"`
}

type pageInfo struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

func toUserView(user User) UserView {
	return UserView{
		ID:         user.ID,
		Email:      user.Email,
		Role:       string(user.Role),
		IsApproved: user.IsApproved,
		Profile:    user.Profile,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

func toUserViews(users []User) []UserView {
	out := make([]UserView, 0, len(users))
	for _, user := range users {
		out = append(out, toUserView(user))
	}
	return out
}

func (r registerRequest) profile() Profile {
	return Profile{
		Name:            r.Name,
		Organization:    r.Organization,
		District:        r.District,
		AreaOfOperation: r.AreaOfOperation,
		ContactNumber:   r.ContactNumber,
		Address:         r.Address,
	}
}

func (r profileRequest) profile() Profile {
	return Profile{
		Name:            r.Name,
		Organization:    r.Organization,
		District:        r.District,
		AreaOfOperation: r.AreaOfOperation,
		ContactNumber:   r.ContactNumber,
		Address:         r.Address,
	}
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		limit = 10
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}
