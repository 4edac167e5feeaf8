package cli

import (
	"context"
	"os"

	"github.com/tishanyq/shopsync/internal/client/services"
)

// register collects the shop profile, creates the shop on the backend and
// stores the device identity.
func (a *App) register(ctx context.Context) {
	if a.isRegistered(ctx) {
		printlnFn("This device is already registered.")
		return
	}

	in := &services.RegisterInput{}
	var err error
	prompts := []struct {
		dst    *string
		prompt string
	}{
		{&in.ShopName, "Shop name"},
		{&in.OwnerName, "Owner first name"},
		{&in.OwnerSurname, "Owner surname"},
		{&in.PhoneNumber, "Phone number"},
		{&in.Services, "Services offered (optional)"},
		{&in.Address, "Address (optional)"},
	}
	for _, p := range prompts {
		if *p.dst, err = GetSimpleText(a.reader, p.prompt, os.Stdout); err != nil {
			printlnFn("Error:", err.Error())
			return
		}
	}

	pin, err := GetPIN(os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	in.PIN = string(pin)

	auth, err := a.license.Register(ctx, in)
	if err != nil {
		printlnFn("Registration failed:", err.Error())
		return
	}
	printlnFn("Registered. Shop id:", auth.ShopID, "device slot:", auth.DeviceSlot)
	printlnFn("Activate this device with 'activate <product-key>'.")
}

func (a *App) activate(ctx context.Context, key string) {
	auth, err := a.license.Activate(ctx, key)
	if err != nil {
		printlnFn("Activation failed:", err.Error())
		return
	}
	printlnFn("License active until", auth.ExpiresAt.Format("2006-01-02"))
}

func (a *App) renew(ctx context.Context, key string) {
	auth, err := a.license.Renew(ctx, key)
	if err != nil {
		printlnFn("Renewal failed:", err.Error())
		return
	}
	printlnFn("License renewed until", auth.ExpiresAt.Format("2006-01-02"))
}

// setPIN verifies the current PIN and replaces it.
func (a *App) setPIN(ctx context.Context) {
	printlnFn("Current PIN:")
	current, err := GetPIN(os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	if err := a.license.VerifyPIN(ctx, string(current)); err != nil {
		printlnFn("Wrong PIN.")
		return
	}

	printlnFn("New PIN:")
	next, err := GetPIN(os.Stdout)
	if err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	if err := a.license.ChangePIN(ctx, string(next)); err != nil {
		printlnFn("Error:", err.Error())
		return
	}
	printlnFn("PIN updated.")
}
