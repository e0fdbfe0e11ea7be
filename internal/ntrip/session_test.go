package ntrip

import (
	"bufio"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gnsslabs/ntrip-rtcm/internal/crc24q"
	"github.com/gnsslabs/ntrip-rtcm/internal/rtcmframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestFrame(msgType uint16) []byte {
	payload := make([]byte, 4)
	payload[0] = byte(msgType >> 4)
	payload[1] = byte(msgType<<4) & 0xF0

	header := []byte{0xD3, byte((len(payload) >> 8) & 0x03), byte(len(payload) & 0xFF)}
	withoutCRC := append(append([]byte{}, header...), payload...)
	crc := crc24q.Checksum(withoutCRC)
	return append(withoutCRC, byte(crc>>16), byte(crc>>8), byte(crc))
}

// readRequestHeader drains bytes off conn until it has seen the blank line
// terminating an HTTP-style request, matching what a real caster does
// before replying.
func readRequestHeader(t *testing.T, conn net.Conn) string {
	t.Helper()
	reader := bufio.NewReader(conn)
	var sb strings.Builder
	for {
		line, err := reader.ReadString('\n')
		sb.WriteString(line)
		if err != nil || line == "\r\n" {
			return sb.String()
		}
	}
}

func TestSessionStreamScenarioS5Cancellation(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		readRequestHeader(t, serverConn)
		serverConn.Write([]byte("HTTP/1.1 200 OK\r\n\r\n"))

		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; i < 10; i++ {
			<-ticker.C
			if _, err := serverConn.Write(buildTestFrame(1077)); err != nil {
				return
			}
		}
	}()

	var frameCount int32
	session := NewSession(clientConn, Config{Host: "test.example.com", Mountpoint: "MOUNT"})

	streamErr := make(chan error, 1)
	go func() {
		streamErr <- session.Stream(func(frame rtcmframe.Frame) {
			atomic.AddInt32(&frameCount, 1)
		})
	}()

	time.Sleep(350 * time.Millisecond)
	cancelStart := time.Now()
	session.Cancel()

	select {
	case err := <-streamErr:
		assert.ErrorIs(t, err, ErrCancelled)
		assert.Less(t, time.Since(cancelStart), 200*time.Millisecond+100*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("Stream did not return after Cancel")
	}

	assert.GreaterOrEqual(t, int(atomic.LoadInt32(&frameCount)), 3)
	<-serverDone
}

func TestSessionStreamRejectsNon200(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	go func() {
		readRequestHeader(t, serverConn)
		serverConn.Write([]byte("HTTP/1.1 401 Unauthorized\r\n\r\n"))
		serverConn.Close()
	}()

	session := NewSession(clientConn, Config{Host: "test.example.com", Mountpoint: "MOUNT"})
	err := session.Stream(func(frame rtcmframe.Frame) {})
	assert.ErrorIs(t, err, ErrAuthRejected)
}

func TestSessionStreamAcceptsLegacyICYStatus(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	go func() {
		readRequestHeader(t, serverConn)
		serverConn.Write([]byte("ICY 200 OK\r\n\r\n"))
		serverConn.Write(buildTestFrame(1005))
	}()

	var gotFrame int32
	session := NewSession(clientConn, Config{Host: "test.example.com", Mountpoint: "MOUNT"})
	streamErr := make(chan error, 1)
	go func() {
		streamErr <- session.Stream(func(frame rtcmframe.Frame) {
			atomic.StoreInt32(&gotFrame, 1)
			assert.Equal(t, uint16(1005), frame.MessageType)
		})
	}()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&gotFrame) == 1 }, time.Second, 10*time.Millisecond)
	session.Cancel()

	select {
	case err := <-streamErr:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("Stream did not return after Cancel")
	}
}

func TestSessionSendsGGAOnSchedule(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	ggaLines := make(chan string, 5)
	go func() {
		readRequestHeader(t, serverConn)
		serverConn.Write([]byte("HTTP/1.1 200 OK\r\n\r\n"))

		reader := bufio.NewReader(serverConn)
		for i := 0; i < 2; i++ {
			line, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			ggaLines <- line
		}
		serverConn.Close()
	}()

	session := NewSession(clientConn, Config{
		Host:       "test.example.com",
		Mountpoint: "MOUNT",
		Rover: RoverPosition{
			PositionFunc: func() (float64, float64) { return 52.1234, 5.6789 },
		},
	})

	go session.Stream(func(frame rtcmframe.Frame) {})

	select {
	case line := <-ggaLines:
		assert.True(t, strings.HasPrefix(line, "$GNGGA,"))
	case <-time.After(2 * time.Second):
		t.Fatal("no GGA sentence received")
	}
	session.Cancel()
}

func TestSessionStreamNonRTCMFormatCountsBytesWithoutFraming(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	payload := []byte{0xB5, 0x62, 0x01, 0x02, 0x03, 0x04}
	go func() {
		readRequestHeader(t, serverConn)
		serverConn.Write([]byte("HTTP/1.1 200 OK\r\n\r\n"))
		serverConn.Write(payload)
	}()

	var frameCount int32
	session := NewSession(clientConn, Config{
		Host:         "test.example.com",
		Mountpoint:   "MOUNT",
		StreamFormat: FormatUBX,
	})

	streamErr := make(chan error, 1)
	go func() {
		streamErr <- session.Stream(func(frame rtcmframe.Frame) {
			atomic.AddInt32(&frameCount, 1)
		})
	}()

	require.Eventually(t, func() bool {
		return session.BytesReceived() >= uint64(len(payload))
	}, time.Second, 10*time.Millisecond)

	session.Cancel()
	select {
	case err := <-streamErr:
		assert.ErrorIs(t, err, ErrCancelled)
	case <-time.After(time.Second):
		t.Fatal("Stream did not return after Cancel")
	}

	assert.Equal(t, int32(0), atomic.LoadInt32(&frameCount))
	snap := session.BytesByFormat()
	assert.Equal(t, uint64(len(payload)), snap[FormatUBX])
	assert.Equal(t, uint64(0), snap[FormatRTCM3x])
}
