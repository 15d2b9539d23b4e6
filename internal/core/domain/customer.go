package domain

type Customer struct {
	ID      int
	Name    string
	Contact string
}
