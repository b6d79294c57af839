package shop

import (
	"fmt"

	"fish-shop/internal/moltin"
)

// Callback data understood across states.
const (
	dataCart = "cart"
	dataBack = "back"
	dataPay  = "pay"
)

// Button is one inline option; Data comes back as the next Action's Data.
type Button struct {
	Label string
	Data  string
}

// Reply is the outbound turn handed to the transport: a text (or a photo
// with the text as caption) plus the option rows for the next input.
type Reply struct {
	Text     string
	PhotoURL string
	Buttons  [][]Button
}

func menuKeyboard(products []moltin.Product) [][]Button {
	rows := make([][]Button, 0, len(products)+1)
	for _, p := range products {
		rows = append(rows, []Button{{Label: p.Name, Data: p.ID}})
	}
	rows = append(rows, []Button{{Label: "Корзина", Data: dataCart}})
	return rows
}

func quantityKeyboard() [][]Button {
	return [][]Button{
		{
			{Label: "1 kg", Data: "1"},
			{Label: "5 kg", Data: "5"},
			{Label: "10 kg", Data: "10"},
		},
		{{Label: "Корзина", Data: dataCart}},
		{{Label: "Назад", Data: dataBack}},
	}
}

func cartKeyboard(lines []CartLine) [][]Button {
	rows := make([][]Button, 0, len(lines)+2)
	for _, line := range lines {
		rows = append(rows, []Button{{
			Label: fmt.Sprintf("Удалить %s из корзины", line.Name),
			Data:  line.ItemID,
		}})
	}
	rows = append(rows,
		[]Button{{Label: "В меню", Data: dataBack}},
		[]Button{{Label: "Оплатить", Data: dataPay}},
	)
	return rows
}
