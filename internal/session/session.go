// Package session is the interactive terminal front end. It reads numbered
// menu choices and free text answers line by line.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Skotchmaster/marketplace/internal/domain"
	"github.com/Skotchmaster/marketplace/internal/logging"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/service"
)

const pageSize = 10

type Session struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	Cart    *service.CartService
	Orders  *service.OrderService

	in   *bufio.Reader
	out  io.Writer
	user *models.User
}

func New(in io.Reader, out io.Writer, auth *service.AuthService, catalog *service.CatalogService, cart *service.CartService, orders *service.OrderService) *Session {
	return &Session{
		Auth:    auth,
		Catalog: catalog,
		Cart:    cart,
		Orders:  orders,
		in:      bufio.NewReader(in),
		out:     out,
	}
}

type menuItem struct {
	label string
	run   func(ctx context.Context) error
}

// Run shows the main menu until the user quits or input ends.
func (s *Session) Run(ctx context.Context) error {
	s.println("Welcome to the marketplace!")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		items := s.menu()
		s.println("")
		if s.user != nil {
			s.printf("Logged in as %s\n", s.user.Username)
		}
		for i, it := range items {
			s.printf("%d) %s\n", i+1, it.label)
		}
		s.println("0) Quit")

		choice, err := s.prompt("> ")
		if errors.Is(err, io.EOF) {
			s.println("Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}
		if choice == "0" || strings.EqualFold(choice, "q") {
			s.println("Goodbye!")
			return nil
		}

		n, ok := parseChoice(choice, len(items))
		if !ok {
			s.println("Invalid choice.")
			continue
		}
		if err := items[n-1].run(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				s.println("Goodbye!")
				return nil
			}
			return err
		}
	}
}

func (s *Session) menu() []menuItem {
	if s.user == nil {
		return []menuItem{
			{"Register", s.register},
			{"Login", s.login},
		}
	}
	return []menuItem{
		{"Market products", s.marketProducts},
		{"Search products", s.searchProducts},
		{"My products", s.myProducts},
		{"Create product", s.createProduct},
		{"View cart", s.viewCart},
		{"Checkout", s.checkout},
		{"My orders", s.viewOrders},
		{"Manage profile", s.manageProfile},
		{"Logout", s.logout},
	}
}

func parseChoice(s string, max int) (int, bool) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

func (s *Session) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptUntil repeats the prompt until check accepts the answer. With
// optional set a blank answer is returned as is.
func (s *Session) promptUntil(label string, optional bool, check func(string) error) (string, error) {
	for {
		ans, err := s.prompt(label)
		if err != nil {
			return "", err
		}
		if ans == "" && optional {
			return "", nil
		}
		if err := check(ans); err != nil {
			s.printf("Error: %s. Please try again.\n", err)
			continue
		}
		return ans, nil
	}
}

func (s *Session) confirm(question string) (bool, error) {
	ans, err := s.prompt(question + " [y/N]: ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(ans, "y") || strings.EqualFold(ans, "yes"), nil
}

func (s *Session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

// report prints domain errors verbatim and hides everything else behind a
// generic message. It returns only errors that should end the session.
func (s *Session) report(ctx context.Context, event string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return err
	}
	if isDomain(err) {
		s.printf("Error: %s\n", err.Error())
		if errors.Is(err, domain.ErrUserNotFound) && s.user != nil {
			s.user = nil
			s.println("Your account no longer exists. You have been logged out.")
		}
		return nil
	}
	logging.FromContext(ctx).Error(event, "error", err)
	s.println("Error: something went wrong, please try again.")
	return nil
}

func isDomain(err error) bool {
	for _, target := range []error{
		domain.ErrValidation, domain.ErrNotFound, domain.ErrForbidden, domain.ErrConflict,
		domain.ErrUserExists, domain.ErrUsernameTaken, domain.ErrUserNotFound,
		domain.ErrInvalidPassword, domain.ErrTooManyAttempts, domain.ErrEmptyCart,
		domain.ErrUnavailable, domain.ErrOwnProduct, domain.ErrInsufficientStock,
		domain.ErrInvalidTransition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
