package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"tinyos/device/block"
	"tinyos/device/block/ata"
	"tinyos/device/block/image"
	"tinyos/device/video/console"
	"tinyos/fs/fat16"
	"tinyos/fs/fat16/fat16test"
	"tinyos/kernel/cpu/cpusim"
	"tinyos/kernel/kmain"
	"tinyos/partition/mbr"
)

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls IMAGE",
		Short: "List the root directory of a FAT16 image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, vol, err := a.mount(args[0])
			if err != nil {
				return err
			}
			defer disk.Close()

			entries, err := vol.ReadDir()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "volume %s at lba %d\n", vol.Label(), vol.PartitionBase())

			tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
			for i := range entries {
				e := &entries[i]
				kind := "-"
				if e.IsDir() {
					kind = "d"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
					kind, e.DisplayName(), e.Size, e.StartCluster(), e.ModTime().Format("2006-01-02 15:04"),
				)
			}
			return tw.Flush()
		},
	}
}

func newCatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cat IMAGE NAME",
		Short: "Print a file from the root directory of a FAT16 image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, vol, err := a.mount(args[0])
			if err != nil {
				return err
			}
			defer disk.Close()

			data, err := afero.ReadFile(fat16.NewFs(vol), args[1])
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newChainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chain IMAGE NAME",
		Short: "Print the cluster chain of a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, vol, err := a.mount(args[0])
			if err != nil {
				return err
			}
			defer disk.Close()

			f, err := vol.Open(args[1])
			if err != nil {
				return err
			}

			chain, chainErr := vol.FAT().Chain(f.Cluster)
			clusters := make([]string, len(chain))
			for i, c := range chain {
				clusters[i] = fmt.Sprintf("%d", c)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes, %d clusters: %s\n",
				f.Name(), f.Entry.Size, len(chain), strings.Join(clusters, " -> "),
			)
			return chainErr
		},
	}
}

func newBootCmd(a *app) *cobra.Command {
	cfg := kmain.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "boot IMAGE",
		Short: "Boot the kernel on simulated hardware with IMAGE as the primary ATA disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := image.Open(a.fs, args[0])
			if err != nil {
				return err
			}
			defer disk.Close()

			if cfg.BootID == "" {
				cfg.BootID = uuid.New().String()
			}
			cfg.PartitionBase, cfg.ProbePartition = a.partitionBase, a.probe

			fb := make([]uint16, console.DefaultColumns*console.DefaultRows)
			hw := kmain.Hardware{
				MMU:     cpusim.NewMMU(),
				Memory:  cpusim.NewMemory(),
				Disk:    ata.New(cpusim.NewATADisk(disk, disk.Sectors())),
				Console: console.NewVgaTextConsole(console.DefaultColumns, console.DefaultRows, fb),
			}

			a.log.WithField("boot_id", cfg.BootID).Debugf("booting %s", args[0])
			sys, err := kmain.Boot(hw, cfg)

			out := cmd.OutOrStdout()
			fmt.Fprint(out, hw.Console.Text())
			if err != nil {
				return err
			}

			if sys.BootFile != nil {
				fmt.Fprintf(out, "--- %s ---\n", sys.BootFile.Name())
				_, _ = out.Write(sys.BootData)
			}

			sys.Pool.Dump(out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.BootID, "boot-id", "", "boot id reported in the kernel log (random when empty)")
	flags.StringVar(&cfg.BootFile, "boot-file", cfg.BootFile, "file loaded from the boot volume")
	flags.IntVar(&cfg.ReadLimit, "read-limit", cfg.ReadLimit, "maximum number of bytes read from the boot file")
	flags.IntVar(&cfg.FrameCount, "frames", cfg.FrameCount, "number of frames in the physical frame pool")
	flags.IntVar(&cfg.HeapFrames, "heap-frames", cfg.HeapFrames, "number of frames mapped as the kernel heap")
	return cmd
}

func newMkimageCmd(a *app) *cobra.Command {
	var (
		withMBR bool
		label   string
		spc     uint8
	)

	cmd := &cobra.Command{
		Use:   "mkimage OUT [FILE...]",
		Short: "Create a FAT16 image holding the given host files in its root directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if spc == 0 {
				return errors.New("mkimage: --cluster-sectors must be positive")
			}

			base := a.partitionBase
			b := fat16test.New(base)
			b.BootSector().SectorsPerCluster = spc
			if withMBR {
				b.WithMBR(mbr.TypeFAT16LBA)
			}
			if label != "" {
				padded := fmt.Sprintf("%-11.11s", strings.ToUpper(label))
				copy(b.BootSector().VolumeLabel[:], padded)
				b.AddLabel(strings.TrimRight(padded, " "))
			}

			for _, path := range args[1:] {
				data, err := afero.ReadFile(a.fs, path)
				if err != nil {
					return err
				}
				entry := b.AddFile(filepath.Base(path), data)
				a.log.Debugf("added %s as %s (%d bytes)", path, entry.DisplayName(), len(data))
			}

			img, err := b.Build()
			if err != nil {
				return err
			}

			if err = afero.WriteFile(a.fs, args[0], img, 0644); err != nil {
				return errors.Wrapf(err, "mkimage: write %s", args[0])
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d sectors, volume at lba %d)\n",
				args[0], len(img)/block.SectorSize, base)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&withMBR, "mbr", true, "write a partition table in sector 0")
	flags.StringVar(&label, "label", "", "volume label")
	flags.Uint8Var(&spc, "cluster-sectors", fat16test.DefaultSectorsPerCluster, "sectors per cluster")
	return cmd
}
