package main

import (
	"fmt"
	"log/slog"

	"github.com/halfpeak/hidc/hidraw"
)

// VerifyCmd reads a live kernel-exposed HID report descriptor back off a
// hidraw device node and diffs it against a previously compiled descriptor
// file, the runtime counterpart of Testable Property 1 (the emitted
// descriptor is minimal and correct): if a real device exposes a different
// byte stream than hidc computed, something in the compiler or the DSL
// source has drifted from the hardware.
type VerifyCmd struct {
	Device     string `arg:"" name:"device" help:"hidraw device node, e.g. /dev/hidraw0"`
	Descriptor string `arg:"" name:"descriptor" help:"Path to a raw binary file holding the compiled descriptor bytes"`
}

func (c *VerifyCmd) Run(logger *slog.Logger) error {
	compiled, err := readDescriptorFile(c.Descriptor)
	if err != nil {
		return fmt.Errorf("hidc verify: %w", err)
	}

	live, err := hidraw.ReadDescriptor(c.Device)
	if err != nil {
		return fmt.Errorf("hidc verify: %w", err)
	}

	if diff := hidraw.Diff(compiled, live); diff != "" {
		logger.Error("descriptor mismatch", "device", c.Device, "reason", diff)
		return fmt.Errorf("hidc verify: %s", diff)
	}

	logger.Info("descriptor verified", "device", c.Device, "bytes", len(live))
	fmt.Printf("OK: %s matches %s (%d bytes)\n", c.Descriptor, c.Device, len(live))
	return nil
}
