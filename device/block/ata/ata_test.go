package ata

import (
	"bytes"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"tinyos/device/block"
	"tinyos/kernel/cpu/cpumock"
	"tinyos/kernel/cpu/cpusim"
)

func diskImage(sectors int) []byte {
	data := make([]byte, sectors*block.SectorSize)
	for i := range data {
		data[i] = byte(i*7 + i/block.SectorSize)
	}
	return data
}

func TestReadSectors(t *testing.T) {
	data := diskImage(300)
	sim := cpusim.NewATADisk(bytes.NewReader(data), 300)
	disk := New(sim)

	t.Run("single sector", func(t *testing.T) {
		buf := make([]byte, block.SectorSize)
		require.NoError(t, disk.ReadSectors(5, buf, 1))
		require.Equal(t, data[5*block.SectorSize:6*block.SectorSize], buf)
	})

	t.Run("transfer split into multiple commands", func(t *testing.T) {
		before := len(sim.Commands())
		buf := make([]byte, 290*block.SectorSize)
		require.NoError(t, disk.ReadSectors(3, buf, 290))
		require.Equal(t, data[3*block.SectorSize:293*block.SectorSize], buf)
		require.Len(t, sim.Commands()[before:], 2)
	})

	t.Run("zero sectors", func(t *testing.T) {
		before := len(sim.Commands())
		require.NoError(t, disk.ReadSectors(0, nil, 0))
		require.Len(t, sim.Commands(), before)
	})

	t.Run("short buffer", func(t *testing.T) {
		err := disk.ReadSectors(0, make([]byte, block.SectorSize), 2)
		require.Equal(t, block.ErrShortBuffer, err)
	})

	t.Run("beyond end of disk", func(t *testing.T) {
		err := disk.ReadSectors(299, make([]byte, 2*block.SectorSize), 2)
		require.True(t, errors.Is(err, block.ErrIO), "got %v", err)
		require.True(t, errors.Is(err, errCommand), "got %v", err)
	})

	t.Run("beyond LBA28", func(t *testing.T) {
		err := disk.ReadSectors(maxLBA-1, make([]byte, 2*block.SectorSize), 2)
		require.True(t, errors.Is(err, ErrLBARange), "got %v", err)
	})
}

func TestReadSectorsRegisterProtocol(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ports := cpumock.NewMockPortIO(ctrl)
	lba := uint32(0x0A1B2C3D)

	gomock.InOrder(
		ports.EXPECT().PortWriteByte(uint16(portDrive), uint8(0xE0|0x0A)),
		ports.EXPECT().PortWriteByte(uint16(portSectorCount), uint8(1)),
		ports.EXPECT().PortWriteByte(uint16(portLBALow), uint8(0x3D)),
		ports.EXPECT().PortWriteByte(uint16(portLBAMid), uint8(0x2C)),
		ports.EXPECT().PortWriteByte(uint16(portLBAHigh), uint8(0x1B)),
		ports.EXPECT().PortWriteByte(uint16(portCommand), uint8(cmdReadSectors)),
		ports.EXPECT().PortReadByte(uint16(portStatus)).Return(uint8(statusBSY)),
		ports.EXPECT().PortReadByte(uint16(portStatus)).Return(uint8(statusBSY|statusDRDY)),
		ports.EXPECT().PortReadByte(uint16(portStatus)).Return(uint8(statusDRDY|statusDRQ)),
		ports.EXPECT().PortReadWord(uint16(portData)).Return(uint16(0xBBAA)).Times(wordsPerSector),
	)

	buf := make([]byte, block.SectorSize)
	require.NoError(t, New(ports).ReadSectors(lba, buf, 1))
	require.Equal(t, bytes.Repeat([]byte{0xAA, 0xBB}, wordsPerSector), buf)
}

func TestReadSectorsDeviceFault(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ports := cpumock.NewMockPortIO(ctrl)
	ports.EXPECT().PortWriteByte(gomock.Any(), gomock.Any()).Times(6)
	ports.EXPECT().PortReadByte(uint16(portStatus)).Return(uint8(statusDRDY | statusDF))

	err := New(ports).ReadSectors(0, make([]byte, block.SectorSize), 1)
	require.True(t, errors.Is(err, errDeviceFault), "got %v", err)
	require.True(t, errors.Is(err, block.ErrIO), "got %v", err)
}

func TestDriverInit(t *testing.T) {
	var buf bytes.Buffer

	present := New(cpusim.NewATADisk(bytes.NewReader(diskImage(1)), 1))
	require.NoError(t, present.DriverInit(&buf))
	require.Equal(t, "primary master present (status 0x40)\n", buf.String())

	absent := New(cpusim.NewATADisk(nil, 0))
	require.Equal(t, ErrNoDrive, absent.DriverInit(&buf))

	require.Equal(t, "ata_pio", present.DriverName())
	major, minor, patch := present.DriverVersion()
	require.Equal(t, [3]uint16{0, 1, 0}, [3]uint16{major, minor, patch})
}
