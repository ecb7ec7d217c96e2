package domain

type Holiday struct {
	ID   int64  `json:"id"`
	Date Date   `json:"date"`
	Name string `json:"name"`
}
