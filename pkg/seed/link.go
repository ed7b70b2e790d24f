package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-netcanvas/pkg/logging"
	"github.com/dd0wney/cluso-netcanvas/pkg/netbox"
)

// LinkStore reads devices and runs write transactions
type LinkStore interface {
	netbox.Reader
	netbox.TxRunner
}

// Link describes a cable created by LinkFirstDevices
type Link struct {
	CableID    int64
	ADevice    string
	AInterface string
	BDevice    string
	BInterface string
}

// LinkFirstDevices cables the first free interface of the first device to
// the first free interface of the second. It is a smoke test for cable
// writes against a live database.
func LinkFirstDevices(ctx context.Context, store LinkStore, logger logging.Logger) (*Link, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	devices, err := store.ListDeviceSummaries(ctx, 2)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if len(devices) < 2 {
		return nil, fmt.Errorf("need at least 2 devices, found %d", len(devices))
	}
	ifaces, err := store.ListInterfaces(ctx, []int64{devices[0].ID, devices[1].ID})
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	a := freeInterface(ifaces, devices[0].ID)
	b := freeInterface(ifaces, devices[1].ID)
	if a == nil {
		return nil, fmt.Errorf("device %s has no free interface", devices[0].Name)
	}
	if b == nil {
		return nil, fmt.Errorf("device %s has no free interface", devices[1].Name)
	}

	link := &Link{
		ADevice:    devices[0].Name,
		AInterface: a.Name,
		BDevice:    devices[1].Name,
		BInterface: b.Name,
	}
	err = store.WithTx(ctx, func(w netbox.Writer) error {
		id, err := w.CreateCable(ctx, a.ID, b.ID, netbox.CableSpec{Type: "cat6", Status: "connected", Label: "test-cable"})
		link.CableID = id
		return err
	})
	if errors.Is(err, netbox.ErrCabled) {
		return nil, fmt.Errorf("interfaces changed while linking: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("create cable: %w", err)
	}
	logger.Info("test cable created",
		logging.Component("seed"),
		logging.CableID(link.CableID),
		logging.String("a", link.ADevice+":"+link.AInterface),
		logging.String("b", link.BDevice+":"+link.BInterface),
	)
	return link, nil
}

func freeInterface(ifaces []netbox.Interface, deviceID int64) *netbox.Interface {
	for i := range ifaces {
		if ifaces[i].DeviceID == deviceID && !ifaces[i].Connected() && !ifaces[i].MgmtOnly {
			return &ifaces[i]
		}
	}
	return nil
}
