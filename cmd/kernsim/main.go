// Command kernsim boots the tinyos memory and storage subsystem against
// simulated hardware and inspects FAT16 disk images from the host.
package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"tinyos/device/block/image"
	"tinyos/fs/fat16"
	"tinyos/kernel/klog"
	"tinyos/partition/mbr"
)

// app carries the state shared by all sub-commands.
type app struct {
	fs  afero.Fs
	log *logrus.Logger

	verbose       bool
	partitionBase uint32
	probe         bool
}

func newApp(fs afero.Fs, stderr io.Writer) *app {
	log := logrus.New()
	log.Out = stderr
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}

	return &app{fs: fs, log: log}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "kernsim",
		Short:         "Boot and inspect the tinyos storage stack on the host",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cliLevel, kernelLevel := logrus.WarnLevel, logrus.InfoLevel
			if a.verbose {
				cliLevel, kernelLevel = logrus.DebugLevel, logrus.DebugLevel
			}
			a.log.SetLevel(cliLevel)
			klog.SetLevel(kernelLevel)
			klog.SetOutputSink(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.Uint32Var(&a.partitionBase, "base", fat16.DefaultPartitionBase, "LBA of the FAT16 boot sector when no partition table is found")
	flags.BoolVar(&a.probe, "probe", true, "look up the FAT16 partition in the MBR")

	root.AddCommand(
		newLsCmd(a),
		newCatCmd(a),
		newChainCmd(a),
		newBootCmd(a),
		newMkimageCmd(a),
	)
	return root
}

// mount opens the image at path and mounts its FAT16 volume. The returned
// disk must be closed by the caller.
func (a *app) mount(path string) (*image.Disk, *fat16.Volume, error) {
	disk, err := image.Open(a.fs, path)
	if err != nil {
		return nil, nil, err
	}

	base := a.partitionBase
	if a.probe {
		if lba, err := mbr.Locate(disk); err == nil {
			base = lba
		} else {
			a.log.WithError(err).Debugf("no partition table; using lba %d", base)
		}
	}

	vol, err := fat16.Mount(disk, base)
	if err != nil {
		_ = disk.Close()
		return nil, nil, err
	}
	return disk, vol, nil
}

func main() {
	a := newApp(afero.NewOsFs(), os.Stderr)
	if err := newRootCmd(a).Execute(); err != nil {
		a.log.Error(err)
		os.Exit(1)
	}
}
