package user

// User is a reqres user.
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// UserDTO is one user as served by the API.
type UserDTO struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// singleUserResponse is the /users/{id} envelope. Data is nil when the field
// is missing or null.
type singleUserResponse struct {
	Data *UserDTO `json:"data"`
}

// PagedUserResponse is the /users?page=N envelope.
type PagedUserResponse struct {
	Page       int        `json:"page"`
	PerPage    int        `json:"per_page"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
	Data       *[]UserDTO `json:"data"`
}

// MapUser converts the wire representation into a User.
func MapUser(dto UserDTO) User {
	return User{
		ID:        dto.ID,
		Email:     dto.Email,
		FirstName: dto.FirstName,
		LastName:  dto.LastName,
		Avatar:    dto.Avatar,
	}
}
