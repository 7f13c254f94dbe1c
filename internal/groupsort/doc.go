// Package groupsort implements keyboard grab-and-sort over a group of items.
//
// In selecting mode arrow-style keys move the selection between items; Enter
// or Space grabs the selected item, after which the same keys change its
// value inside a Range until Enter, Space or Escape releases it. Machine is a
// pure transition function from (State, Event) to (State, []Effect);
// Interaction keeps the state, serialises events and runs effects against a
// Handler.
package groupsort
