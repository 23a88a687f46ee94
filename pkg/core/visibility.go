package core

// Visibility represents the authentication class of an endpoint.
type Visibility int

// Visibility constants define the two endpoint classes.
const (
	// Public endpoints require no authentication.
	Public Visibility = iota
	// Private endpoints require a bearer token.
	Private
)

// String returns the string representation of the visibility class ("public" or "private").
func (v Visibility) String() string {
	return [...]string{
		"public",
		"private",
	}[v]
}
