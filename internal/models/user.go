package models

// User is a synthetic user record served by the fake API.
type User struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Website  string  `json:"website"`
	Address  Address `json:"address"`
	Company  Company `json:"company"`
}

// Address is the postal address of a fake user
type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

// Company is the employer of a fake user
type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
}
