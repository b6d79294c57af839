// Package shop is the conversation core: per-chat sessions and the state
// machine that routes each user action to the commerce backend and decides
// the next turn. It is transport-agnostic; the telegram package translates
// updates in and replies out.
package shop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strconv"

	"fish-shop/internal/moltin"
)

type Catalog interface {
	Products(ctx context.Context) ([]moltin.Product, error)
	Product(ctx context.Context, productID string) (moltin.Product, error)
	ImageURL(ctx context.Context, fileID string) (string, error)
}

type CartService interface {
	AddCartItem(ctx context.Context, cartRef, productID string, quantityKg int) error
	CartItems(ctx context.Context, cartRef string) (moltin.Cart, error)
	RemoveCartItem(ctx context.Context, cartRef, itemID string) error
}

type CustomerService interface {
	CreateCustomer(ctx context.Context, fullName, email string) (string, error)
}

type IdentityStore interface {
	Has(ctx context.Context, chatID int64) (bool, error)
	Save(ctx context.Context, chatID int64, customerID string) error
}

// Action is one incoming user turn: a /start command, an option selection,
// or a plain text message.
type Action struct {
	Start    bool
	Data     string
	Text     string
	FullName string
}

type Machine struct {
	catalog    Catalog
	cart       CartService
	customers  CustomerService
	identities IdentityStore
	sessions   *Sessions
}

func NewMachine(catalog Catalog, cart CartService, customers CustomerService, identities IdentityStore) *Machine {
	return &Machine{
		catalog:    catalog,
		cart:       cart,
		customers:  customers,
		identities: identities,
		sessions:   NewSessions(),
	}
}

// Handle processes one turn for one chat and returns the reply to send.
// It never fails: every backend error collapses into an apology plus the
// menu, and the conversation goes on.
func (m *Machine) Handle(ctx context.Context, chatID int64, a Action) Reply {
	sess := m.sessions.Get(chatID)

	reply, err := m.dispatch(ctx, chatID, sess, a)
	if err == nil {
		return reply
	}

	log.Printf("chat %d: state %s: %v", chatID, sess.State, err)
	sess.State = StateMenu
	sess.SelectedProductID = ""

	prefix := "Что-то пошло не так, попробуйте ещё раз."
	if errors.Is(err, moltin.ErrNotFound) {
		prefix = "Этот товар больше недоступен."
	}
	menu, err := m.menu(ctx, sess, prefix)
	if err != nil {
		// The menu itself is unreachable; nothing left to offer but /start.
		log.Printf("chat %d: menu unavailable: %v", chatID, err)
		return Reply{Text: "Магазин временно недоступен. Отправьте /start чуть позже."}
	}
	return menu
}

func (m *Machine) dispatch(ctx context.Context, chatID int64, sess *Session, a Action) (Reply, error) {
	// /start always restarts the conversation, whatever the state.
	if a.Start {
		sess.State = StateMenu
		sess.SelectedProductID = ""
		sess.CartLines = nil
		return m.menu(ctx, sess, "Выберите товар:")
	}

	switch sess.State {
	case StateMenu:
		switch {
		case a.Data == dataCart:
			return m.showCart(ctx, chatID, sess)
		case a.Data != "":
			return m.showProduct(ctx, sess, a.Data)
		}

	case StateProductDetail:
		switch {
		case a.Data == dataBack:
			sess.SelectedProductID = ""
			return m.menu(ctx, sess, "Выберите товар:")
		case a.Data == dataCart:
			return m.showCart(ctx, chatID, sess)
		case a.Data != "":
			return m.addToCart(ctx, chatID, sess, a.Data)
		}

	case StateCartView:
		switch {
		case a.Data == dataBack:
			return m.menu(ctx, sess, "Выберите товар:")
		case a.Data == dataPay:
			return m.startCheckout(ctx, chatID, sess)
		case a.Data != "":
			// Any other selection in the cart is a remove button.
			if err := m.cart.RemoveCartItem(ctx, cartRef(chatID), a.Data); err != nil {
				return Reply{}, err
			}
			return m.showCart(ctx, chatID, sess)
		}

	case StateAwaitingEmail:
		if a.Text != "" {
			return m.register(ctx, chatID, sess, a)
		}
	}

	return Reply{}, fmt.Errorf("unhandled input in state %s", sess.State)
}

func (m *Machine) menu(ctx context.Context, sess *Session, text string) (Reply, error) {
	products, err := m.catalog.Products(ctx)
	if err != nil {
		return Reply{}, err
	}
	sess.State = StateMenu
	return Reply{Text: text, Buttons: menuKeyboard(products)}, nil
}

func (m *Machine) showProduct(ctx context.Context, sess *Session, productID string) (Reply, error) {
	product, err := m.catalog.Product(ctx, productID)
	if err != nil {
		return Reply{}, err
	}

	reply := Reply{
		Text:    moltin.DescribeProduct(product),
		Buttons: quantityKeyboard(),
	}
	if product.MainImageID != "" {
		url, err := m.catalog.ImageURL(ctx, product.MainImageID)
		if err != nil {
			return Reply{}, err
		}
		reply.PhotoURL = url
	}

	sess.State = StateProductDetail
	sess.SelectedProductID = product.ID
	return reply, nil
}

func (m *Machine) addToCart(ctx context.Context, chatID int64, sess *Session, data string) (Reply, error) {
	quantity, err := strconv.Atoi(data)
	if err != nil || quantity <= 0 {
		return Reply{}, fmt.Errorf("quantity %q does not parse", data)
	}
	if sess.SelectedProductID == "" {
		return Reply{}, fmt.Errorf("no product selected")
	}

	if err := m.cart.AddCartItem(ctx, cartRef(chatID), sess.SelectedProductID, quantity); err != nil {
		return Reply{}, err
	}
	sess.SelectedProductID = ""
	return Reply{
		Text:    fmt.Sprintf("Добавлено в корзину: %d кг", quantity),
		Buttons: quantityKeyboard(),
	}, nil
}

func (m *Machine) showCart(ctx context.Context, chatID int64, sess *Session) (Reply, error) {
	cart, err := m.cart.CartItems(ctx, cartRef(chatID))
	if err != nil {
		return Reply{}, err
	}

	// Rebuild the projection from the fetched snapshot, never merge.
	lines := make([]CartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, CartLine{Name: item.Name, ItemID: item.ID})
	}
	sess.CartLines = lines
	sess.State = StateCartView
	sess.SelectedProductID = ""

	return Reply{Text: moltin.RenderCart(cart), Buttons: cartKeyboard(lines)}, nil
}

func (m *Machine) startCheckout(ctx context.Context, chatID int64, sess *Session) (Reply, error) {
	registered, err := m.identities.Has(ctx, chatID)
	if err != nil {
		return Reply{}, err
	}
	if registered {
		return m.menu(ctx, sess, "Ваша почта уже в базе")
	}
	sess.State = StateAwaitingEmail
	return Reply{Text: "Введите ваш e-mail"}, nil
}

func (m *Machine) register(ctx context.Context, chatID int64, sess *Session, a Action) (Reply, error) {
	if _, err := mail.ParseAddress(a.Text); err != nil {
		// Bad email re-prompts in place instead of resetting the flow.
		return Reply{Text: "Это не похоже на e-mail, попробуйте ещё раз"}, nil
	}

	customerID, err := m.customers.CreateCustomer(ctx, a.FullName, a.Text)
	if err != nil {
		return Reply{}, err
	}
	if err := m.identities.Save(ctx, chatID, customerID); err != nil {
		return Reply{}, err
	}
	return m.menu(ctx, sess, fmt.Sprintf("Вы прислали эту почту %s\n\nВыберите товар:", a.Text))
}

// cartRef is the remote cart reference; the chat id keys the upstream cart.
func cartRef(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
