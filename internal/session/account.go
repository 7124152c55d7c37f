package session

import (
	"context"
)

func (s *Session) register(ctx context.Context) error {
	username, err := s.prompt("Username: ")
	if err != nil {
		return err
	}
	password, err := s.prompt("Password: ")
	if err != nil {
		return err
	}

	if _, err := s.Auth.Register(ctx, username, password); err != nil {
		return s.report(ctx, "register_error", err)
	}
	s.println("Registration successful! You can now log in.")
	return nil
}

func (s *Session) login(ctx context.Context) error {
	username, err := s.prompt("Username: ")
	if err != nil {
		return err
	}
	password, err := s.prompt("Password: ")
	if err != nil {
		return err
	}

	user, err := s.Auth.Login(ctx, username, password)
	if err != nil {
		return s.report(ctx, "login_error", err)
	}
	s.user = user
	s.printf("Welcome, %s!\n", user.Username)
	return nil
}

func (s *Session) logout(context.Context) error {
	s.user = nil
	s.println("Logged out successfully!")
	return nil
}

func (s *Session) manageProfile(ctx context.Context) error {
	s.println("1) Update username")
	s.println("2) Update password")
	s.println("3) Delete account")
	choice, err := s.prompt("Choose (blank to go back): ")
	if err != nil {
		return err
	}

	switch choice {
	case "1":
		return s.updateUsername(ctx)
	case "2":
		return s.updatePassword(ctx)
	case "3":
		return s.deleteAccount(ctx)
	}
	return nil
}

func (s *Session) updateUsername(ctx context.Context) error {
	name, err := s.prompt("New username: ")
	if err != nil {
		return err
	}
	if err := s.Auth.UpdateUsername(ctx, s.user.ID, name); err != nil {
		return s.report(ctx, "update_username_error", err)
	}
	user, err := s.Auth.User(ctx, s.user.ID)
	if err != nil {
		return s.report(ctx, "update_username_error", err)
	}
	s.user = user
	s.printf("Username updated to %s.\n", user.Username)
	return nil
}

func (s *Session) updatePassword(ctx context.Context) error {
	current, err := s.prompt("Current password: ")
	if err != nil {
		return err
	}
	next, err := s.prompt("New password: ")
	if err != nil {
		return err
	}
	if err := s.Auth.UpdatePassword(ctx, s.user.ID, current, next); err != nil {
		return s.report(ctx, "update_password_error", err)
	}
	s.println("Password updated.")
	return nil
}

func (s *Session) deleteAccount(ctx context.Context) error {
	ok, err := s.confirm("Delete your account and all your products?")
	if err != nil || !ok {
		return err
	}
	if err := s.Auth.DeleteAccount(ctx, s.user.ID); err != nil {
		return s.report(ctx, "delete_account_error", err)
	}
	s.user = nil
	s.println("Account deleted.")
	return nil
}
