//go:build linux

// Package hidraw reads back a live kernel-exposed HID report descriptor via
// the hidraw ioctls, so the `hidc verify` subcommand can diff it byte-for-byte
// against the compiler's generated descriptor constant (spec.md Testable
// Property 1: "the descriptor is minimal and correct"). This is the runtime
// counterpart to the compile-time Descriptor Emitter in
// internal/compiler/emit, grounded on the teacher pack's own hidraw ioctl
// plumbing (malivvan-aegis's hid/hid_linux.go).
package hidraw

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// hidrawReportDescriptor mirrors the kernel's struct hidraw_report_descriptor
// (linux/hidraw.h): a 4-byte size field followed by a fixed 4096-byte buffer.
const maxDescriptorSize = 4096

type hidrawReportDescriptor struct {
	Size  uint32
	Value [maxDescriptorSize]byte
}

// ioctl request numbers for HIDIOCGRDESCSIZE and HIDIOCGRDESC, computed the
// same way the teacher's hid_linux.go computes HIDIOCGFEATURE/HIDIOCSFEATURE:
// _IOC(dir, 'H', nr, size).
const (
	hidIOCGRDescSizeNr = 0x01
	hidIOCGRDescNr     = 0x02
)

const (
	iocNrbits   = 8
	iocTypebits = 8
	iocSizebits = 14
	iocDirbits  = 2

	iocNrshift   = 0
	iocTypeshift = iocNrshift + iocNrbits
	iocSizeshift = iocTypeshift + iocTypebits
	iocDirshift  = iocSizeshift + iocSizebits

	iocRead = 2
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirshift) | (typ << iocTypeshift) | (nr << iocNrshift) | (size << iocSizeshift)
}

// ReadDescriptor opens the hidraw device node at path (e.g. "/dev/hidraw0")
// and returns the kernel's cached copy of its report descriptor, the exact
// bytes a USB host received during enumeration.
func ReadDescriptor(path string) ([]byte, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("hidraw: open %s: %w", path, err)
	}
	defer f.Close()

	fd := uintptr(f.Fd())

	var size int32
	sizeReq := ioc(iocRead, 'H', hidIOCGRDescSizeNr, unsafe.Sizeof(size))
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, sizeReq, uintptr(unsafe.Pointer(&size))); errno != 0 {
		return nil, fmt.Errorf("hidraw: HIDIOCGRDESCSIZE %s: %w", path, errno)
	}
	if size < 0 || size > maxDescriptorSize {
		return nil, fmt.Errorf("hidraw: %s: implausible descriptor size %d", path, size)
	}

	desc := hidrawReportDescriptor{Size: uint32(size)}
	descReq := ioc(iocRead, 'H', hidIOCGRDescNr, unsafe.Sizeof(desc))
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, descReq, uintptr(unsafe.Pointer(&desc))); errno != 0 {
		return nil, fmt.Errorf("hidraw: HIDIOCGRDESC %s: %w", path, errno)
	}

	return append([]byte(nil), desc.Value[:size]...), nil
}
