// Package device defines the interface shared by all device drivers.
package device

import (
	"fmt"
	"io"

	"tinyos/kernel/klog"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. If the driver init code
	// needs to log some output, it can use the supplied io.Writer.
	DriverInit(io.Writer) error
}

// InitDrivers initializes each driver in order and returns the ones that
// initialized successfully. Driver output is written to w prefixed with
// the driver name; failures are logged and the driver is skipped.
func InitDrivers(w io.Writer, drivers ...Driver) []Driver {
	log := klog.Module("dev")

	active := make([]Driver, 0, len(drivers))
	for _, drv := range drivers {
		major, minor, patch := drv.DriverVersion()
		version := fmt.Sprintf("%d.%d.%d", major, minor, patch)

		if err := drv.DriverInit(&prefixWriter{w: w, prefix: "[" + drv.DriverName() + "] "}); err != nil {
			log.WithError(err).Warnf("%s(%s): init failed", drv.DriverName(), version)
			continue
		}

		log.Infof("%s(%s): initialized", drv.DriverName(), version)
		active = append(active, drv)
	}

	return active
}

// prefixWriter prepends a prefix to the start of each line written to it.
type prefixWriter struct {
	w       io.Writer
	prefix  string
	midLine bool
}

func (pw *prefixWriter) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		if !pw.midLine {
			if _, err := io.WriteString(pw.w, pw.prefix); err != nil {
				return written, err
			}
			pw.midLine = true
		}

		end := len(p)
		for i, b := range p {
			if b == '\n' {
				end = i + 1
				pw.midLine = false
				break
			}
		}

		n, err := pw.w.Write(p[:end])
		written += n
		if err != nil {
			return written, err
		}
		p = p[end:]
	}

	return written, nil
}
