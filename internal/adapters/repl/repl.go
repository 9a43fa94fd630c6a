package repl

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"strings"

	"booking-finance/internal/app"
	"booking-finance/internal/core"
)

// Run starts the interactive REPL loop.
// Slash commands edit the booking form deterministically; any other input is
// sent to the AI extractor and the resulting draft can be loaded into the form.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader) {
	company, err := svc.LoadDefaultCompany(ctx)
	if err != nil {
		log.Fatalf("Failed to load company: %v", err)
	}

	fmt.Println("Booking Finance")
	fmt.Printf("Company: %s - %s (%s)\n", company.CompanyCode, company.Name, company.BaseCurrency)
	fmt.Println("Paste a deal note to draft a booking, or use /help for commands.")
	fmt.Println(strings.Repeat("-", 70))

	s := newSession()
	errExit := fmt.Errorf("exit")

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "new":
			s = handleNewBooking(reader, s)

		case "set":
			if len(args) < 2 {
				fmt.Println("Usage: /set <field> <value>")
				return nil
			}
			if err := s.set(args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			printTotals(s.form.Derived())

		case "add":
			if len(args) < 1 {
				fmt.Println("Usage: /add <received|pending>")
				return nil
			}
			pos, err := s.add(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Added %s payment #%d.\n", strings.ToLower(args[0]), pos)

		case "rm":
			if len(args) < 2 {
				fmt.Println("Usage: /rm <received|pending> <n>")
				return nil
			}
			if err := s.remove(args[0], args[1]); err != nil {
				return err
			}
			printPayments(s.form.Payments())

		case "pay":
			if len(args) < 4 {
				fmt.Println("Usage: /pay <received|pending> <n> <amount|date|status|mode|cheque|txn> <value>")
				return nil
			}
			if err := s.pay(args[0], args[1], args[2], strings.Join(args[3:], " ")); err != nil {
				return err
			}
			printPayments(s.form.Payments())

		case "show":
			printSession(s)

		case "submit":
			req, err := s.request(company.CompanyCode)
			if err != nil {
				return err
			}
			result, err := svc.CreateBooking(ctx, req)
			if err != nil {
				return err
			}
			fmt.Printf("Booking %s SAVED. TSP %s, received %s.\n",
				result.Booking.BookingNumber,
				result.Booking.Finance.TSP.StringFixed(2),
				result.Booking.Finance.TotalReceived.StringFixed(2))
			s = newSession()

		case "bookings", "ls":
			result, err := svc.ListBookings(ctx, company.CompanyCode)
			if err != nil {
				return err
			}
			printBookings(result)

		case "booking":
			if len(args) < 1 {
				fmt.Println("Usage: /booking <id|booking-number>")
				return nil
			}
			result, err := svc.GetBooking(ctx, args[0], company.CompanyCode)
			if err != nil {
				return err
			}
			printBookingDetail(result.Booking)

		case "help", "h":
			printHelp()

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Printf("Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Print("\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				return
			}
			continue
		}

		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if err == errExit {
					fmt.Println("Goodbye!")
					break
				}
				printError(err)
			}
			continue
		}

		fmt.Println("[AI] Processing...")
		accumulatedInput := input

		rounds := 0
		for {
			rounds++
			if rounds > 3 {
				fmt.Println("Could not produce a draft. Enter the booking with /set and /pay instead.")
				break
			}

			result, err := svc.DraftBooking(ctx, accumulatedInput, company.CompanyCode)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				break
			}

			if result.IsClarification {
				fmt.Printf("\n[AI]: %s\n", result.ClarificationMessage)
				fmt.Print("> ")
				userFollowUp, _ := reader.ReadString('\n')
				userFollowUp = strings.TrimSpace(userFollowUp)

				if strings.HasPrefix(userFollowUp, "/") {
					fmt.Println("(AI session cancelled)")
					if dispErr := dispatchSlash(userFollowUp); dispErr != nil {
						if dispErr == errExit {
							fmt.Println("Goodbye!")
							return
						}
						printError(dispErr)
					}
					break
				}

				if userFollowUp == "" || strings.ToLower(userFollowUp) == "cancel" {
					fmt.Println("Cancelled.")
					break
				}
				accumulatedInput = fmt.Sprintf("Original note: %s\nClarification requested: %s\nUser response: %s",
					accumulatedInput, result.ClarificationMessage, userFollowUp)
				fmt.Println("[AI] Thinking...")
				continue
			}

			printDraft(result)
			if result.Confidence < 0.6 {
				fmt.Println("\nWARNING: Low confidence draft. Check every figure.")
			}

			if confirmDraft(reader) {
				s.load(*result.Draft)
				fmt.Println("Draft loaded. Review with /show, then /submit.")
			} else {
				fmt.Println("Draft discarded.")
			}
			break
		}
	}
}

// printError lists field errors one per line and prints anything else as is.
func printError(err error) {
	if fe, ok := core.AsFieldErrors(err); ok {
		fmt.Println("Cannot submit:")
		for _, f := range fe {
			fmt.Printf("  - %s: %s\n", f.Field, f.Message)
		}
		return
	}
	fmt.Printf("Error: %v\n", err)
}
