package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tishanyq/shopsync/internal/client/models"
	"github.com/tishanyq/shopsync/internal/common"
)

func (a *App) addItem(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Item name", os.Stdout)
	if err != nil || name == "" {
		printlnFn("Item name is required.")
		return
	}
	category, err := GetSimpleText(a.reader, "Category", os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	priceUSD, err := GetAmount(a.reader, "Price (USD)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	priceZWG, err := GetAmount(a.reader, "Price (ZWG)", os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	qtyText, err := GetSimpleText(a.reader, "Quantity in stock", os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	qty, err := strconv.ParseInt(qtyText, 10, 64)
	if err != nil || qty < 0 {
		printlnFn("Quantity must be a non-negative number.")
		return
	}

	item := &models.Item{
		LocalID:   uuid.NewString(),
		Name:      name,
		Category:  category,
		PriceUSD:  priceUSD,
		PriceZWG:  priceZWG,
		Quantity:  qty,
		CreatedAt: time.Now(),
	}
	if err := a.store.AddItem(ctx, item); err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	printlnFn("Added", name, "id:", item.LocalID)
}

func (a *App) listItems(ctx context.Context, category string) {
	var (
		rows []models.Item
		err  error
	)
	if category == "" {
		rows, err = a.store.Items(ctx)
	} else {
		rows, err = a.store.ItemsByCategory(ctx, category)
	}
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	if len(rows) == 0 {
		printlnFn("No items.")
		return
	}
	for _, item := range rows {
		printlnFn(fmt.Sprintf("%s  %-20s %-12s USD %-8s ZWG %-10s qty %d",
			item.LocalID, item.Name, item.Category,
			item.PriceUSD.StringFixed(2), item.PriceZWG.StringFixed(2), item.Quantity))
	}
}

func (a *App) deleteItem(ctx context.Context, localID string) {
	err := a.store.DeleteItem(ctx, localID)
	switch {
	case errors.Is(err, common.ErrItemInUse):
		printlnFn("Item has recorded sales and cannot be deleted.")
	case errors.Is(err, common.ErrNotFound):
		printlnFn("Item not found.")
	case err != nil:
		printlnFn("Error:", err.Error())
	default:
		printlnFn("Deleted.")
	}
}
