package klog

import (
	"bytes"
	"io"
	"io/ioutil"
	"strings"
	"testing"
)

func TestRingBuffer(t *testing.T) {
	expStr := "the big brown fox jumped over the lazy dog"

	t.Run("read/write", func(t *testing.T) {
		var rb ringBuffer
		n, err := rb.Write([]byte(expStr))
		if err != nil {
			t.Fatal(err)
		}

		if n != len(expStr) {
			t.Fatalf("expected to write %d bytes; wrote %d", len(expStr), n)
		}

		if got := readByteByByte(t, &rb); got != expStr {
			t.Fatalf("expected to read %q; got %q", expStr, got)
		}

		if rb.Len() != 0 {
			t.Fatalf("expected buffer to be drained; %d bytes left", rb.Len())
		}
	})

	t.Run("write wraps around end of buffer", func(t *testing.T) {
		var rb ringBuffer
		rb.start = earlyBufferSize - 5

		if _, err := rb.Write([]byte(expStr)); err != nil {
			t.Fatal(err)
		}

		got, err := ioutil.ReadAll(&rb)
		if err != nil {
			t.Fatal(err)
		}

		if string(got) != expStr {
			t.Fatalf("expected to read %q; got %q", expStr, got)
		}
	})

	t.Run("overflow keeps the most recent bytes", func(t *testing.T) {
		var rb ringBuffer
		payload := strings.Repeat("a", earlyBufferSize) + "tail"

		if _, err := rb.Write([]byte(payload)); err != nil {
			t.Fatal(err)
		}

		if rb.Len() != earlyBufferSize {
			t.Fatalf("expected buffer to hold %d bytes; got %d", earlyBufferSize, rb.Len())
		}

		got, err := ioutil.ReadAll(&rb)
		if err != nil {
			t.Fatal(err)
		}

		if exp := payload[len(payload)-earlyBufferSize:]; string(got) != exp {
			t.Fatal("expected buffer to retain the last bytes written")
		}
	})

	t.Run("read on empty buffer", func(t *testing.T) {
		var rb ringBuffer
		if n, err := rb.Read(make([]byte, 4)); n != 0 || err != io.EOF {
			t.Fatalf("expected (0, io.EOF); got (%d, %v)", n, err)
		}

		if n, err := rb.Read(nil); n != 0 || err != nil {
			t.Fatalf("expected (0, nil) for an empty read; got (%d, %v)", n, err)
		}
	})

	t.Run("reset", func(t *testing.T) {
		var rb ringBuffer
		_, _ = rb.Write([]byte(expStr))
		rb.Reset()

		if rb.Len() != 0 {
			t.Fatalf("expected Reset to discard buffered data; %d bytes left", rb.Len())
		}
	})
}

func readByteByByte(t *testing.T, r io.Reader) string {
	var (
		buf bytes.Buffer
		b   = make([]byte, 1)
	)

	for {
		n, err := r.Read(b)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		buf.Write(b[:n])
	}

	return buf.String()
}
