package session

import (
	"context"
	"strings"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/util"
)

func (s *Session) viewCart(ctx context.Context) error {
	for {
		lines, total, err := s.Cart.View(ctx, s.user.ID)
		if err != nil {
			return s.report(ctx, "view_cart_error", err)
		}
		if len(lines) == 0 {
			s.println("Your cart is currently empty.")
			return nil
		}

		for _, l := range lines {
			s.printf("[%d] %s - $%s (x%d)\n", l.ProductID, l.Name, l.Price.StringFixed(2), l.Quantity)
		}
		s.printf("Total: $%s\n", total.StringFixed(2))

		ans, err := s.prompt("Product id to remove, c) checkout, x) clear, blank) back: ")
		if err != nil {
			return err
		}
		switch strings.ToLower(ans) {
		case "":
			return nil
		case "c":
			return s.checkout(ctx)
		case "x":
			ok, err := s.confirm("Remove everything from your cart?")
			if err != nil {
				return err
			}
			if ok {
				if err := s.Cart.Clear(ctx, s.user.ID); err != nil {
					return s.report(ctx, "clear_cart_error", err)
				}
				s.println("Cart cleared.")
			}
		default:
			id, err := util.ParseID(ans)
			if err != nil {
				s.println("Invalid product id.")
				continue
			}
			if err := s.Cart.Remove(ctx, s.user.ID, id); err != nil {
				return s.report(ctx, "remove_from_cart_error", err)
			}
			s.println("Item removed from your cart.")
		}
	}
}

func (s *Session) checkout(ctx context.Context) error {
	order, err := s.Orders.Checkout(ctx, s.user.ID)
	if err != nil {
		return s.report(ctx, "checkout_error", err)
	}
	s.printf("Order #%d placed.\n%s\nTotal: $%s\n", order.ID, order.Details, order.Total.StringFixed(2))
	return nil
}

func (s *Session) viewOrders(ctx context.Context) error {
	_, orders, err := s.Orders.List(ctx, s.user.ID, 1, 100)
	if err != nil {
		return s.report(ctx, "view_orders_error", err)
	}
	if len(orders) == 0 {
		s.println("You have no orders yet.")
		return nil
	}
	for _, o := range orders {
		s.printf("[%d] %s - $%s - %s\n", o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.Total.StringFixed(2), o.Status)
	}

	ans, err := s.prompt("Order id for details, blank to go back: ")
	if err != nil || ans == "" {
		return err
	}
	id, err := util.ParseID(ans)
	if err != nil {
		s.println("Invalid order id.")
		return nil
	}
	order, err := s.Orders.Get(ctx, s.user.ID, id)
	if err != nil {
		return s.report(ctx, "view_order_error", err)
	}
	s.printf("Order #%d (%s)\n%s\nTotal: $%s\n", order.ID, order.Status, order.Details, order.Total.StringFixed(2))

	if order.Status != models.OrderStatusPending {
		return nil
	}
	ok, err := s.confirm("Cancel this order?")
	if err != nil || !ok {
		return err
	}
	if _, err := s.Orders.Cancel(ctx, s.user.ID, id); err != nil {
		return s.report(ctx, "cancel_order_error", err)
	}
	s.println("Order canceled.")
	return nil
}
