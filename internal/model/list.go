package model

import "fmt"

// ListName selects one of the three personal timed lists.
type ListName string

const (
	ListPrep     ListName = "prep"
	ListTodo     ListName = "todo"
	ListShopping ListName = "shopping"
)

// ListNames is the fixed display order of the timed lists.
var ListNames = []ListName{ListPrep, ListTodo, ListShopping}

// ParseListName validates a list name coming from user input.
func ParseListName(s string) (ListName, error) {
	for _, n := range ListNames {
		if string(n) == s {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown list %q (want prep, todo or shopping)", s)
}

// StorageKey is the persisted key holding this list.
func (n ListName) StorageKey() string {
	switch n {
	case ListPrep:
		return "prepList"
	case ListTodo:
		return "userTodoList"
	case ListShopping:
		return "userShoppingList"
	}
	return ""
}

// DefaultTime is the pre-filled time for a new item on this list.
func (n ListName) DefaultTime() string {
	switch n {
	case ListPrep:
		return "08:00"
	case ListTodo:
		return "10:00"
	case ListShopping:
		return "14:00"
	}
	return "09:00"
}

// Title is the human-readable heading of the list.
func (n ListName) Title() string {
	switch n {
	case ListPrep:
		return "Preparation"
	case ListTodo:
		return "To-Do"
	case ListShopping:
		return "Shopping"
	}
	return string(n)
}

// ListItem is a timed, completable entry in one of the personal lists.
type ListItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Time      string `json:"time"`
	Completed bool   `json:"completed"`
}

// TimedList is the one list type shared by the prep, todo and shopping lists.
// Item ids are unique within a list.
type TimedList []ListItem

// Add returns the list with item appended.
func (l TimedList) Add(item ListItem) TimedList {
	return append(l, item)
}

// Toggle flips Completed on the item with the given id. It reports whether
// the id was found.
func (l TimedList) Toggle(id string) bool {
	for i := range l {
		if l[i].ID == id {
			l[i].Completed = !l[i].Completed
			return true
		}
	}
	return false
}

// Remove returns the list without the item with the given id, and whether
// anything was removed.
func (l TimedList) Remove(id string) (TimedList, bool) {
	for i := range l {
		if l[i].ID == id {
			out := make(TimedList, 0, len(l)-1)
			out = append(out, l[:i]...)
			return append(out, l[i+1:]...), true
		}
	}
	return l, false
}

// Find returns the item with the given id.
func (l TimedList) Find(id string) (ListItem, bool) {
	for _, it := range l {
		if it.ID == id {
			return it, true
		}
	}
	return ListItem{}, false
}

// Pending counts items not yet completed.
func (l TimedList) Pending() int {
	n := 0
	for _, it := range l {
		if !it.Completed {
			n++
		}
	}
	return n
}
