package pitchers

// Instance is a named puzzle in the flat number form.
type Instance struct {
	Name    string
	Numbers []int
}

// Catalog holds the classic instances, all starting with empty pitchers.
var Catalog = []Instance{
	{Name: "four-from-5-3", Numbers: []int{4, 5, 3, 0, 0}},
	{Name: "two-from-7-3", Numbers: []int{2, 7, 3, 0, 0}},
	{Name: "four-from-7-3", Numbers: []int{4, 7, 3, 0, 0}},
	{Name: "one-from-2-5-10", Numbers: []int{1, 2, 5, 10, 0, 0, 0}},
	{Name: "one-from-3-8-12", Numbers: []int{1, 3, 8, 12, 0, 0, 0}},
}

// Lookup returns the state of the named catalog instance.
func Lookup(name string) (State, bool) {
	for _, in := range Catalog {
		if in.Name == name {
			s, err := FromNumbers(in.Numbers)
			return s, err == nil
		}
	}
	return State{}, false
}
