package repl

import (
	"bufio"
	"fmt"
	"strings"
)

// handleNewBooking starts a fresh session and prompts for the header fields.
// Blank answers leave a field empty; 'cancel' keeps the previous session.
func handleNewBooking(reader *bufio.Reader, current *session) *session {
	fmt.Println("New booking. Press Enter to skip a field, 'cancel' to abort.")

	s := newSession()
	prompts := []struct {
		label string
		field string
	}{
		{"Customer name", "customer"},
		{"Project", "project"},
		{"Unit number", "unit"},
		{"Booking date (YYYY-MM-DD)", "date"},
	}
	for i := 0; i < len(prompts); i++ {
		p := prompts[i]
		fmt.Printf("  %s: ", p.label)
		raw, _ := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if strings.ToLower(raw) == "cancel" {
			fmt.Println("Cancelled.")
			return current
		}
		if raw == "" {
			continue
		}
		if err := s.set(p.field, raw); err != nil {
			fmt.Printf("  %v\n", err)
			i--
		}
	}

	fmt.Println("Enter amounts with /set, payments with /add and /pay. /show to review.")
	return s
}

// confirmDraft asks whether an extracted draft should replace the current session.
func confirmDraft(reader *bufio.Reader) bool {
	fmt.Print("\nLoad this draft into the form? (y/n): ")
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	return choice == "y" || choice == "yes"
}
