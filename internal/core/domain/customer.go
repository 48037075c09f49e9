package domain

import "fmt"

// Customer is the recipient of recommendations.
type Customer struct {
	Name string `json:"name" yaml:"name"`
	City string `json:"city" yaml:"city"`
}

func (c Customer) String() string {
	return fmt.Sprintf("Customer(name=%s, city=%s)", c.Name, c.City)
}
