package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/marketplace/internal/domain"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
)

type pageFunc func(ctx context.Context, page int) (transport.PageMeta, []models.ProductView, error)

func (s *Session) marketProducts(ctx context.Context) error {
	return s.browse(ctx, func(ctx context.Context, page int) (transport.PageMeta, []models.ProductView, error) {
		return s.Catalog.List(ctx, page, pageSize)
	})
}

func (s *Session) searchProducts(ctx context.Context) error {
	q, err := s.prompt("Search: ")
	if err != nil {
		return err
	}
	return s.browse(ctx, func(ctx context.Context, page int) (transport.PageMeta, []models.ProductView, error) {
		return s.Catalog.Search(ctx, q, page, pageSize)
	})
}

// browse pages through products and opens the one the user picks.
func (s *Session) browse(ctx context.Context, load pageFunc) error {
	page := 1
	for {
		meta, items, err := load(ctx, page)
		if err != nil {
			return s.report(ctx, "browse_error", err)
		}
		if len(items) == 0 {
			s.println("No products found.")
			return nil
		}

		s.printf("Page %d of %d (%d products)\n", meta.Page, meta.TotalPages, meta.Total)
		for _, p := range items {
			s.printf("[%d] %s - $%s (%d in stock) by %s\n", p.ID, p.Name, p.Price.StringFixed(2), p.Quantity, p.CreatorName)
		}

		ans, err := s.prompt("Product id, n/p for next/previous page, blank to go back: ")
		if err != nil {
			return err
		}
		switch {
		case ans == "":
			return nil
		case strings.EqualFold(ans, "n"):
			if meta.HasNext {
				page++
			}
		case strings.EqualFold(ans, "p"):
			if meta.HasPrev {
				page--
			}
		default:
			id, err := util.ParseID(ans)
			if err != nil {
				s.println("Invalid product id.")
				continue
			}
			if err := s.productDetails(ctx, id); err != nil {
				return err
			}
			if s.user == nil {
				return nil
			}
		}
	}
}

func (s *Session) showProduct(p *models.ProductView) {
	s.printf("\n%s\n", p.Name)
	s.printf("Price: $%s\n", p.Price.StringFixed(2))
	s.printf("In stock: %d\n", p.Quantity)
	s.printf("Seller: %s\n", p.CreatorName)
	s.printf("Description: %s\n", p.Description)
}

func (s *Session) productDetails(ctx context.Context, id uint) error {
	p, err := s.Catalog.Get(ctx, id)
	if err != nil {
		return s.report(ctx, "product_error", err)
	}
	s.showProduct(p)

	ans, err := s.prompt("a) add to cart  i) view image  blank) back: ")
	if err != nil {
		return err
	}
	switch strings.ToLower(ans) {
	case "a":
		if !p.Available() {
			s.println(domain.ErrUnavailable.Error())
			return nil
		}
		label := fmt.Sprintf("Quantity (1-%d, blank to cancel): ", p.Quantity)
		qty, err := s.promptUntil(label, true, func(v string) error {
			n, err := util.ParseQuantity(v)
			if err == nil && (n < 1 || n > p.Quantity) {
				err = fmt.Errorf("quantity must be between 1 and %d", p.Quantity)
			}
			return err
		})
		if err != nil || qty == "" {
			return err
		}
		n, _ := util.ParseQuantity(qty)
		item, err := s.Cart.Add(ctx, s.user.ID, p.ID, n)
		if err != nil {
			return s.report(ctx, "add_to_cart_error", err)
		}
		s.printf("%s added to your cart (%d in cart).\n", p.Name, item.Quantity)
	case "i":
		s.showImage(p.AsciiArt)
	}
	return nil
}

func (s *Session) showImage(art *string) {
	if art == nil || *art == "" {
		s.println("No ASCII art available.")
		return
	}
	s.println(*art)
}

func (s *Session) myProducts(ctx context.Context) error {
	items, err := s.Catalog.ListMine(ctx, s.user.ID)
	if err != nil {
		return s.report(ctx, "my_products_error", err)
	}
	if len(items) == 0 {
		s.println("You have no products yet.")
		return nil
	}
	for _, p := range items {
		s.printf("[%d] %s - $%s (%d in stock)\n", p.ID, p.Name, p.Price.StringFixed(2), p.Quantity)
	}

	ans, err := s.prompt("Product id to manage, blank to go back: ")
	if err != nil || ans == "" {
		return err
	}
	id, err := util.ParseID(ans)
	if err != nil {
		s.println("Invalid product id.")
		return nil
	}
	p, err := s.Catalog.Get(ctx, id)
	if err != nil {
		return s.report(ctx, "my_products_error", err)
	}
	s.showProduct(p)

	action, err := s.prompt("e) edit  d) delete  i) view image  blank) back: ")
	if err != nil {
		return err
	}
	switch strings.ToLower(action) {
	case "e":
		return s.editProduct(ctx, id)
	case "d":
		ok, err := s.confirm("Delete " + p.Name + "?")
		if err != nil || !ok {
			return err
		}
		if err := s.Catalog.Delete(ctx, s.user.ID, id); err != nil {
			return s.report(ctx, "delete_product_error", err)
		}
		s.println("Product deleted.")
	case "i":
		s.showImage(p.AsciiArt)
	}
	return nil
}

func (s *Session) createProduct(ctx context.Context) error {
	var in service.ProductInput
	fields := []struct {
		label    string
		dst      *string
		optional bool
		check    func(string) error
	}{
		{"Name: ", &in.Name, false, checkName},
		{"Price: ", &in.Price, false, checkPrice},
		{"Description: ", &in.Description, true, nil},
		{"Quantity (blank for 0): ", &in.Quantity, true, checkQuantity},
		{"Image URL (blank to skip): ", &in.ImageURL, true, nil},
	}
	for _, f := range fields {
		check := f.check
		if check == nil {
			check = func(string) error { return nil }
		}
		v, err := s.promptUntil(f.label, f.optional, check)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	p, err := s.Catalog.CreateFromInput(ctx, s.user.ID, in)
	if err != nil {
		return s.report(ctx, "create_product_error", err)
	}
	s.printf("Product %q created with id %d.\n", p.Name, p.ID)
	return nil
}

// editProduct asks for every field; blank answers leave the field unchanged.
func (s *Session) editProduct(ctx context.Context, id uint) error {
	var req transport.PatchProductRequest

	name, err := s.prompt("New name (blank to keep): ")
	if err != nil {
		return err
	}
	if name != "" {
		req.Name = &name
	}

	price, err := s.promptUntil("New price (blank to keep): ", true, checkPrice)
	if err != nil {
		return err
	}
	if price != "" {
		d, _ := util.ParsePrice(price)
		req.Price = &d
	}

	desc, err := s.prompt("New description (blank to keep): ")
	if err != nil {
		return err
	}
	if desc != "" {
		req.Description = &desc
	}

	qty, err := s.promptUntil("New quantity (blank to keep): ", true, checkQuantity)
	if err != nil {
		return err
	}
	if qty != "" {
		n, _ := util.ParseQuantity(qty)
		req.Quantity = &n
	}

	url, err := s.prompt("New image URL (blank to keep, - to remove): ")
	if err != nil {
		return err
	}
	switch url {
	case "":
	case "-":
		empty := ""
		req.AsciiArt = &empty
	default:
		art, err := s.Catalog.ImageText(ctx, url)
		if err != nil {
			s.printf("Could not convert image: %v\n", err)
		} else {
			req.AsciiArt = &art
		}
	}

	if req.Empty() {
		s.println("Nothing to update.")
		return nil
	}
	if _, err := s.Catalog.Update(ctx, s.user.ID, id, req); err != nil {
		return s.report(ctx, "edit_product_error", err)
	}
	s.println("Product updated.")
	return nil
}

func checkName(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("name is required")
	}
	return nil
}

func checkPrice(v string) error {
	_, err := util.ParsePrice(v)
	return err
}

func checkQuantity(v string) error {
	_, err := util.ParseQuantity(v)
	return err
}
