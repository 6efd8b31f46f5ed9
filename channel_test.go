package goarp

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/bpf"
)

type datagram struct {
	payload []byte
	from    HWaddr
}

// fakeLink is an in-memory linkConn. Requests sent through it are answered
// by the hosts registered in peers; frames queued in inbox are delivered
// first. An empty inbox reads as an expired timeout.
type fakeLink struct {
	peers map[IPv4addr]HWaddr

	inbox   []datagram
	sent    []datagram
	sentIfs []int
	recvs   int

	timeout    time.Duration
	timeoutErr error
	sendErr    error
	shortWrite bool
	recvErr    error
	boundIf    int
	boundHW    HWaddr
	filter     []bpf.RawInstruction
	closed     int
}

func (l *fakeLink) setTimeout(d time.Duration) error {
	if l.timeoutErr != nil {
		return l.timeoutErr
	}
	l.timeout = d
	return nil
}

func (l *fakeLink) bind(ifindex int, hw HWaddr) error {
	l.boundIf, l.boundHW = ifindex, hw
	return nil
}

func (l *fakeLink) sendTo(b []byte, dst HWaddr, ifindex int) (int, error) {
	if l.sendErr != nil {
		return 0, l.sendErr
	}
	l.sent = append(l.sent, datagram{payload: append([]byte(nil), b...), from: dst})
	l.sentIfs = append(l.sentIfs, ifindex)
	if l.shortWrite {
		return len(b) - 1, nil
	}

	var req Frame
	if err := req.Unmarshal(b); err != nil || req.Op != ArpRequest {
		return len(b), nil
	}
	if hw, ok := l.peers[req.TargetIP]; ok {
		reply := NewFrame(ArpReply)
		reply.SenderHW, reply.SenderIP = hw, req.TargetIP
		reply.TargetHW, reply.TargetIP = req.SenderHW, req.SenderIP
		l.inbox = append(l.inbox, datagram{payload: reply.Marshal(), from: hw})
	}
	return len(b), nil
}

func (l *fakeLink) recvFrom(b []byte) (int, HWaddr, error) {
	l.recvs++
	if l.recvErr != nil {
		return 0, HWaddr{}, l.recvErr
	}
	if len(l.inbox) == 0 {
		return 0, HWaddr{}, errRecvTimeout
	}
	d := l.inbox[0]
	l.inbox = l.inbox[1:]
	return copy(b, d.payload), d.from, nil
}

func (l *fakeLink) attachFilter(prog []bpf.RawInstruction) error {
	l.filter = prog
	return nil
}

func (l *fakeLink) close() error {
	l.closed++
	return nil
}

type fakeInterface struct {
	name  string
	index int
	ip    IPv4addr
	mask  IPv4addr
	hw    HWaddr
	noIP  bool
}

func (f *fakeInterface) Name() string { return f.name }
func (f *fakeInterface) Index() int   { return f.index }
func (f *fakeInterface) HWaddr() HWaddr {
	return f.hw
}
func (f *fakeInterface) IsBound() bool { return f.index > 0 }

func (f *fakeInterface) IPv4addr() (IPv4addr, error) {
	if f.noIP {
		return IPv4addr{}, ErrNoIPv4addr
	}
	return f.ip, nil
}

func (f *fakeInterface) Netmask() (IPv4addr, error) {
	if f.noIP {
		return IPv4addr{}, ErrNoIPv4addr
	}
	return f.mask, nil
}

var (
	testNIC = &fakeInterface{
		name:  "eth0",
		index: 2,
		ip:    IPv4addr{192, 168, 1, 57},
		mask:  IPv4addr{255, 255, 255, 0},
		hw:    HWaddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
	}
	testTarget = IPv4addr{192, 168, 1, 10}
	testPeerHW = HWaddr{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}
)

func newTestChannel(t *testing.T, link *fakeLink) *Channel {
	t.Helper()
	c, err := newChannel(link, DefaultTimeout)
	require.NoError(t, err)
	return c
}

func TestResolve(t *testing.T) {
	link := &fakeLink{peers: map[IPv4addr]HWaddr{testTarget: testPeerHW}}
	c := newTestChannel(t, link)

	hw, ok, err := c.Resolve(testTarget, testNIC)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "11:22:33:44:55:66", hw.String())

	require.Len(t, link.sent, 1)
	assert.Equal(t, BcastHWaddr, link.sent[0].from)
	assert.Equal(t, testNIC.index, link.sentIfs[0])

	var req Frame
	require.NoError(t, req.Unmarshal(link.sent[0].payload))
	assert.Equal(t, ArpRequest, req.Op)
	assert.Equal(t, HWtypeEthernet, req.HWtype)
	assert.Equal(t, ProtoIPv4, req.Protocol)
	assert.Equal(t, testNIC.hw, req.SenderHW)
	assert.Equal(t, testNIC.ip, req.SenderIP)
	assert.True(t, req.TargetHW.IsNull())
	assert.Equal(t, testTarget, req.TargetIP)

	// The channel can be reused.
	hw, ok, err = c.Resolve(testTarget, testNIC)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testPeerHW, hw)
}

func TestResolveNotMatched(t *testing.T) {
	other := IPv4addr{192, 168, 1, 11}

	replyFrom := func(ip IPv4addr, op Operation) datagram {
		f := NewFrame(op)
		f.SenderHW, f.SenderIP = testPeerHW, ip
		return datagram{payload: f.Marshal(), from: testPeerHW}
	}

	tests := []struct {
		name  string
		link  *fakeLink
		recvs int
	}{
		{"Timeout", &fakeLink{}, 1},
		{"Reply from another host", &fakeLink{inbox: []datagram{replyFrom(other, ArpReply), replyFrom(testTarget, ArpReply)}}, 1},
		{"Request from target", &fakeLink{inbox: []datagram{replyFrom(testTarget, ArpRequest)}}, 1},
		{"Short frame", &fakeLink{inbox: []datagram{{payload: make([]byte, 10)}}}, 1},
		{"Send failure", &fakeLink{sendErr: newSysError("sendto", "ff:ff:ff:ff:ff:ff", syscall.ENETDOWN)}, 0},
		{"Short write", &fakeLink{shortWrite: true}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestChannel(t, tc.link)
			hw, ok, err := c.Resolve(testTarget, testNIC)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.True(t, hw.IsNull())
			assert.Equal(t, tc.recvs, tc.link.recvs, "a single frame is inspected per call")
		})
	}
}

func TestResolveErrors(t *testing.T) {
	recvErr := newSysError("recvfrom", "", syscall.EBADF)
	c := newTestChannel(t, &fakeLink{recvErr: recvErr})
	_, ok, err := c.Resolve(testTarget, testNIC)
	assert.False(t, ok)
	assert.ErrorIs(t, err, syscall.EBADF)

	var sysErr *SysError
	require.ErrorAs(t, err, &sysErr)
	assert.Equal(t, "recvfrom", sysErr.Op)

	noIP := *testNIC
	noIP.noIP = true
	c = newTestChannel(t, &fakeLink{})
	_, ok, err = c.Resolve(testTarget, &noIP)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoIPv4addr)
}

func TestReceive(t *testing.T) {
	envelope := HWaddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}
	reply := NewFrame(ArpReply)
	reply.SenderHW = testPeerHW
	reply.SenderIP = testTarget
	link := &fakeLink{inbox: []datagram{{payload: reply.Marshal(), from: envelope}}}
	c := newTestChannel(t, link)

	var f Frame
	sender, ok, err := c.Receive(&f)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, envelope, sender)
	assert.Equal(t, testPeerHW, f.SenderHW)
	assert.Equal(t, *reply, f)

	sender, ok, err = c.Receive(&f)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, sender.IsNull())
}

func TestReceiveRuntDatagram(t *testing.T) {
	runt := datagram{payload: []byte{0x00, 0x01, 0x08, 0x00, 0x06, 0x04}, from: testPeerHW}
	link := &fakeLink{inbox: []datagram{runt}}
	c := newTestChannel(t, link)

	f := Frame{Op: ArpReply}
	sender, ok, err := c.Receive(&f)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, testPeerHW, sender)
	assert.Equal(t, Frame{Op: ArpReply}, f, "frame left untouched")
}

func TestSend(t *testing.T) {
	link := &fakeLink{}
	c := newTestChannel(t, link)

	f := NewFrame(ArpReply)
	require.NoError(t, c.Send(f, testPeerHW, testNIC))
	require.Len(t, link.sent, 1)
	assert.Equal(t, f.Marshal(), link.sent[0].payload)
	assert.Equal(t, testPeerHW, link.sent[0].from)

	link.sendErr = newSysError("sendto", testPeerHW.String(), syscall.ENOBUFS)
	err := c.Send(f, testPeerHW, testNIC)
	assert.ErrorIs(t, err, ErrSendFailed)
	assert.ErrorIs(t, err, syscall.ENOBUFS)

	link.sendErr = nil
	link.shortWrite = true
	assert.ErrorIs(t, c.Send(f, testPeerHW, testNIC), ErrSendFailed)
}

func TestSetTimeout(t *testing.T) {
	link := &fakeLink{}
	c := newTestChannel(t, link)
	assert.Equal(t, DefaultTimeout, c.Timeout())
	assert.Equal(t, DefaultTimeout, link.timeout)

	require.NoError(t, c.SetTimeout(0))
	assert.Zero(t, c.Timeout())

	link.timeoutErr = newSysError("setsockopt", "SO_RCVTIMEO", syscall.EINVAL)
	assert.ErrorIs(t, c.SetTimeout(time.Second), syscall.EINVAL)
	assert.Zero(t, c.Timeout(), "previous timeout stays in effect")

	assert.Error(t, c.SetTimeout(-time.Second))
}

func TestNewChannelClosesOnTimeoutFailure(t *testing.T) {
	link := &fakeLink{timeoutErr: newSysError("setsockopt", "SO_RCVTIMEO", syscall.EINVAL)}
	c, err := newChannel(link, DefaultTimeout)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, syscall.EINVAL)
	assert.Equal(t, 1, link.closed)
}

func TestBindAndFilter(t *testing.T) {
	link := &fakeLink{}
	c := newTestChannel(t, link)

	require.NoError(t, c.Bind(testNIC))
	assert.Equal(t, testNIC.index, link.boundIf)
	assert.Equal(t, testNIC.hw, link.boundHW)

	require.NoError(t, c.AttachFilter())
	assert.Len(t, link.filter, len(arpFilter))
}

func TestMoveAndClose(t *testing.T) {
	link := &fakeLink{peers: map[IPv4addr]HWaddr{testTarget: testPeerHW}}
	c := newTestChannel(t, link)
	require.NoError(t, c.SetTimeout(time.Second))

	moved := c.Move()
	assert.Equal(t, time.Second, moved.Timeout())

	_, _, err := c.Resolve(testTarget, testNIC)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Send(NewFrame(ArpRequest), BcastHWaddr, testNIC), ErrClosed)
	_, _, err = c.Receive(&Frame{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Bind(testNIC), ErrClosed)
	assert.ErrorIs(t, c.SetTimeout(time.Second), ErrClosed)
	assert.ErrorIs(t, c.AttachFilter(), ErrClosed)
	require.NoError(t, c.Close())
	assert.Zero(t, link.closed, "closing the moved-from channel must not close the socket")

	hw, ok, err := moved.Resolve(testTarget, testNIC)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, testPeerHW, hw)

	require.NoError(t, moved.Close())
	require.NoError(t, moved.Close())
	assert.Equal(t, 1, link.closed)
	assert.False(t, errors.Is(moved.Close(), ErrClosed))
}
