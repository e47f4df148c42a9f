package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
)

// Order turns the current cart into a restaurant order and queues it for
// sync. The cart is emptied locally right away.
func (a *App) Order(ctx context.Context) error {
	user := a.sess.CurrentUser(ctx)
	if user == nil {
		fmt.Fprintln(a.out, "Log in first")
		return nil
	}

	cart := a.store.Cart(ctx)
	if len(cart) == 0 {
		if err := a.fillCart(ctx); err != nil {
			return err
		}
		cart = a.store.Cart(ctx)
		if len(cart) == 0 {
			fmt.Fprintln(a.out, "Cart is empty")
			return nil
		}
	}

	address, err := GetSimpleText(a.reader, "Delivery address", a.out)
	if err != nil {
		return err
	}

	items := make([]models.OrderItem, 0, len(cart))
	restaurantID := cart[0].RestaurantID
	for _, ci := range cart {
		items = append(items, models.OrderItem{
			MenuItemID: ci.MenuItemID,
			Name:       ci.Name,
			Price:      ci.Price,
			Quantity:   ci.Quantity,
		})
	}

	order := models.NewOrder(user.ID, restaurantID, address, items)
	orders := append(a.store.Orders(ctx), order)
	if !a.store.SaveOrders(ctx, orders) {
		return fmt.Errorf("failed to save order")
	}
	a.store.SaveCart(ctx, nil)

	fmt.Fprintf(a.out, "Order %s queued for sync (total %.2f)\n", order.ID, order.TotalPrice)
	a.push.TrackOrder(order.ID)
	if a.engine.Online() {
		go a.engine.SyncNow(context.Background())
	}
	return nil
}

// Cart shows the current cart and lets the user add items from the cached
// restaurant catalog.
func (a *App) Cart(ctx context.Context) error {
	cart := a.store.Cart(ctx)
	var total float64
	for _, ci := range cart {
		fmt.Fprintf(a.out, "  %dx %s  %.2f\n", ci.Quantity, ci.Name, ci.Price*float64(ci.Quantity))
		total += ci.Price * float64(ci.Quantity)
	}
	fmt.Fprintf(a.out, "Total: %.2f\n", total)

	add, err := GetSimpleText(a.reader, "Add items? (y/n)", a.out)
	if err != nil || add != "y" {
		return err
	}
	return a.fillCart(ctx)
}

// fillCart interactively adds menu items from the cached restaurant catalog.
func (a *App) fillCart(ctx context.Context) error {
	restaurants := a.store.Restaurants(ctx)
	for _, r := range restaurants {
		fmt.Fprintf(a.out, "  %s  %s (%s)\n", r.ID, r.Name, r.Cuisine)
	}

	restaurantID, err := GetSimpleText(a.reader, "Restaurant id", a.out)
	if err != nil {
		return err
	}

	var menu []models.MenuItem
	for _, r := range restaurants {
		if r.ID == restaurantID {
			menu = r.Menu
		}
	}
	for _, m := range menu {
		fmt.Fprintf(a.out, "  %s  %s  %.2f\n", m.ID, m.Name, m.Price)
	}

	cart := a.store.Cart(ctx)
	for {
		itemID, err := GetSimpleText(a.reader, "Menu item id (empty to finish)", a.out)
		if err != nil || itemID == "" {
			break
		}
		qty, err := GetInt(a.reader, "Quantity", a.out)
		if err != nil {
			fmt.Fprintln(a.out, err)
			continue
		}
		for _, m := range menu {
			if m.ID == itemID {
				cart = append(cart, models.CartItem{
					MenuItemID:   m.ID,
					RestaurantID: restaurantID,
					Name:         m.Name,
					Price:        m.Price,
					Quantity:     qty,
					AddedAt:      time.Now(),
				})
			}
		}
	}

	a.store.SaveCart(ctx, cart)
	return nil
}
