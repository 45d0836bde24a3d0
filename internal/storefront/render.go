package storefront

import (
	"fmt"
	"strings"

	"pizza-storefront/internal/journal"
	"pizza-storefront/internal/models"
	"pizza-storefront/internal/navigation"
	"pizza-storefront/internal/workflows/confirm"
	"pizza-storefront/internal/workflows/franchise"
)

// render produces the text of a screen from the state the app holds for it.
func (a *App) render(entry navigation.Entry) []string {
	switch entry.Screen {
	case navigation.Home:
		return a.renderHome()
	case navigation.Menu:
		return a.renderMenu()
	case navigation.Login:
		return a.renderAuth("Welcome back", "login <email> <password>")
	case navigation.Register:
		return a.renderAuth("Welcome to the party", "register <name> <email> <password>")
	case navigation.Payment:
		return a.renderPayment()
	case navigation.Delivery:
		return a.renderDelivery(entry)
	case navigation.DinerDashboard:
		return a.renderDiner()
	case navigation.FranchiseBoard:
		return a.renderFranchiseBoard()
	case navigation.AdminDashboard:
		return a.renderAdmin()
	case navigation.Users:
		return a.renderUsers()
	case navigation.CreateFranchise:
		return []string{"Create franchise", "create-franchise <admin email> <name>"}
	case navigation.CreateStore:
		return []string{"Create store", "create-store <franchise id> <name>"}
	case navigation.CloseFranchise, navigation.CloseStore, navigation.DeleteUser:
		return a.renderConfirmation(entry)
	default:
		return []string{string(entry.Screen)}
	}
}

func (a *App) renderHome() []string {
	lines := []string{"The web's best pizza"}
	if user := a.sessions.User(); user != nil {
		lines = append(lines, fmt.Sprintf("Signed in as %s (%s)", user.Name, user.Initials()))
	} else {
		lines = append(lines, "Pizza is an absolute delight. Order now: menu")
	}
	return lines
}

func (a *App) renderMenu() []string {
	a.mu.Lock()
	menu := append([]models.MenuItem(nil), a.menu...)
	stores := append([]models.Franchise(nil), a.stores...)
	a.mu.Unlock()

	lines := []string{"Awesome is a click away"}
	fid, sid := a.cart.Store()
	if sid.IsZero() {
		lines = append(lines, "Store: none selected")
	} else {
		lines = append(lines, "Store: "+storeLabel(stores, fid, sid))
	}

	lines = append(lines, "Stores:")
	for _, f := range stores {
		for _, s := range f.Stores {
			lines = append(lines, fmt.Sprintf("  %s/%s  %s - %s", f.ID, s.ID, f.Name, s.Name))
		}
	}

	lines = append(lines, "Pizzas:")
	for _, item := range menu {
		mark := " "
		if a.cart.IsSelected(item.ID) {
			mark = "x"
		}
		lines = append(lines, fmt.Sprintf("  [%s] %s  %s  %s - %s", mark, item.ID, item.Price.Display(), item.Title, item.Description))
	}

	lines = append(lines,
		fmt.Sprintf("Selected pizzas: %d", a.cart.Count()),
		"Total: "+a.cart.Total().Display(),
	)
	return lines
}

func storeLabel(franchises []models.Franchise, fid, sid models.ID) string {
	for i := range franchises {
		if franchises[i].ID != fid {
			continue
		}
		if s, ok := franchises[i].Store(sid); ok {
			return franchises[i].Name + " - " + s.Name
		}
	}
	return fid.String() + "/" + sid.String()
}

func (a *App) renderAuth(title, usage string) []string {
	lines := []string{title, usage}
	if intent, ok := a.gate.Pending(); ok {
		lines = append(lines, "Sign in to continue: "+intent.Action)
	}
	return lines
}

func (a *App) renderPayment() []string {
	items := a.cart.Items()
	lines := []string{"So worth it"}
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("  %s  %s", item.Title, item.Price.Display()))
	}
	lines = append(lines,
		"Total: "+a.cart.Total().Display(),
		fmt.Sprintf("Send me those %d pizzas right now!", len(items)),
	)
	return lines
}

func (a *App) renderDelivery(entry navigation.Entry) []string {
	conf, ok := navigation.StateOf[models.Confirmation](entry)
	if !ok {
		return []string{"Here is your JWT Pizza!", "No order to show"}
	}

	lines := []string{
		"Here is your JWT Pizza!",
		"order ID: " + conf.Order.ID.String(),
		fmt.Sprintf("pie count: %d", len(conf.Order.Items)),
		"total: " + conf.Total.Display(),
		"receipt: " + conf.Receipt.Token,
	}

	a.mu.Lock()
	verified := a.verified
	a.mu.Unlock()
	if verified != nil {
		if verified.Valid {
			lines = append(lines, "JWT Pizza - valid")
		} else {
			lines = append(lines, "JWT Pizza - invalid")
		}
		for _, k := range []string{"vendor", "diner", "order"} {
			if v, ok := verified.Claims[k]; ok {
				lines = append(lines, fmt.Sprintf("  %s: %v", k, v))
			}
		}
	}
	return lines
}

func (a *App) renderDiner() []string {
	user := a.sessions.User()
	if user == nil {
		return []string{"Your pizza kitchen", "Not signed in"}
	}

	roles := make([]string, len(user.Roles))
	for i, r := range user.Roles {
		roles[i] = string(r.Kind)
	}
	lines := []string{
		"Your pizza kitchen",
		"name: " + user.Name,
		"email: " + user.Email,
		"role: " + strings.Join(roles, ", "),
	}

	a.mu.Lock()
	history := a.history
	receipts := append([]journal.Entry(nil), a.receipts...)
	a.mu.Unlock()

	if len(history.Orders) == 0 {
		lines = append(lines, "How have you lived this long without having a pizza? Buy one now!")
	} else {
		lines = append(lines, fmt.Sprintf("Here is your history of all the good times (page %d):", history.Page))
		for i := range history.Orders {
			o := &history.Orders[i]
			date := ""
			if o.Date != nil {
				date = o.Date.Format("2006-01-02 15:04")
			}
			lines = append(lines, fmt.Sprintf("  %s  %s  %s", o.ID, o.Total().Display(), date))
		}
		if history.More {
			lines = append(lines, fmt.Sprintf("  more: page %d", history.Page+1))
		}
	}

	if len(receipts) > 0 {
		lines = append(lines, "Saved receipts:")
		for _, e := range receipts {
			status := "unverified"
			if e.Valid.Valid {
				status = "invalid"
				if e.Valid.Bool {
					status = "valid"
				}
			}
			lines = append(lines, fmt.Sprintf("  %s  %s  %s", e.OrderID, e.Total.Display(), status))
		}
	}
	return lines
}

func (a *App) renderFranchiseBoard() []string {
	listing := a.franchises.Listing()
	if len(listing.Franchises) == 0 {
		return []string{
			"So you want a piece of the pie?",
			"If you are already a franchisee, please login using your franchise account",
		}
	}

	var lines []string
	for _, f := range listing.Franchises {
		lines = append(lines,
			f.Name,
			"Everything you need to run an JWT Pizza franchise. Your gateway to success.",
			"Total revenue: "+franchise.Revenue(f).Display(),
		)
		for _, s := range f.Stores {
			lines = append(lines, fmt.Sprintf("  %s  %s  %s", s.ID, s.Name, s.TotalRevenue.Display()))
		}
	}
	return lines
}

func (a *App) renderAdmin() []string {
	listing := a.franchises.Listing()
	lines := []string{
		"Mama Ricci's kitchen",
		"Keep the dough rolling and the franchises signing up.",
	}
	if listing.Filter.Name != "" {
		lines = append(lines, "Filter: "+listing.Filter.Name)
	}
	for _, f := range listing.Franchises {
		admins := make([]string, len(f.Admins))
		for i, adm := range f.Admins {
			admins[i] = adm.Name
		}
		lines = append(lines, fmt.Sprintf("%s  %s  [%s]  %s", f.ID, f.Name, strings.Join(admins, ", "), franchise.Revenue(f).Display()))
		for _, s := range f.Stores {
			lines = append(lines, fmt.Sprintf("    %s  %s  %s", s.ID, s.Name, s.TotalRevenue.Display()))
		}
	}
	if len(listing.Franchises) == 0 {
		lines = append(lines, "No franchises")
	}
	if listing.More {
		lines = append(lines, fmt.Sprintf("more: page %d", listing.Filter.Page+1))
	}
	return lines
}

func (a *App) renderUsers() []string {
	listing := a.profile.UserListing()
	lines := []string{"Users"}
	for _, u := range listing.Users {
		roles := make([]string, len(u.Roles))
		for i, r := range u.Roles {
			roles[i] = string(r.Kind)
		}
		lines = append(lines, fmt.Sprintf("  %s  %s  %s  %s", u.ID, u.Name, u.Email, strings.Join(roles, ",")))
	}
	if listing.More {
		lines = append(lines, fmt.Sprintf("more: page %d", listing.Page+1))
	}
	return lines
}

func (a *App) renderConfirmation(entry navigation.Entry) []string {
	target, ok := navigation.StateOf[confirm.Target](entry)
	warning, err := a.confirm.Warning()
	if !ok || err != nil {
		return []string{"Nothing selected"}
	}
	title := map[confirm.Kind]string{
		confirm.KindFranchise: "Sorry to see you go",
		confirm.KindStore:     "Sorry to see you go",
		confirm.KindUser:      "Delete user",
	}[target.Kind]
	return []string{title, warning, "confirm | cancel"}
}

// Text joins a view into the block the console prints.
func (v View) Text() string {
	var b strings.Builder
	if v.Breadcrumb != "" {
		b.WriteString("[" + v.Breadcrumb + "]\n")
	}
	for _, l := range v.Lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if v.Notice != nil {
		fmt.Fprintf(&b, "! %s: %s\n", v.Notice.Code, v.Notice.Message)
	}
	return b.String()
}

