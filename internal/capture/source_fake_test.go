package capture

import "sync/atomic"

// fakeSource is a scriptable in-memory Source used by the lifecycle
// tests. Frames are produced by calling produce explicitly.
type fakeSource struct {
	failOpen bool
	onDrop   func()

	cell   *FrameCell
	width  uint32
	height uint32
	fourcc FourCC

	open       atomic.Bool
	lost       atomic.Bool
	closeCalls atomic.Int32

	limits map[PropertyID][2]int32
	values map[PropertyID]int32
	auto   map[PropertyID]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		limits: map[PropertyID][2]int32{
			PropExposure:   {-10, 10},
			PropBrightness: {0, 255},
		},
		values: make(map[PropertyID]int32),
		auto:   make(map[PropertyID]bool),
	}
}

func (s *fakeSource) Open(_ *DeviceDescriptor, width, height uint32, fourcc FourCC) bool {
	if s.failOpen {
		return false
	}
	s.width = width
	s.height = height
	s.fourcc = fourcc
	s.cell = NewFrameCell(int(width*height*3), s.onDrop)
	s.open.Store(true)
	return true
}

func (s *fakeSource) IsOpen() bool {
	return s.open.Load() && !s.lost.Load()
}

func (s *fakeSource) CaptureFrame(dst []byte) bool {
	if !s.IsOpen() {
		return false
	}
	return s.cell.Take(dst)
}

func (s *fakeSource) HasNewFrame() bool {
	if s.cell == nil {
		return false
	}
	return s.cell.Pending()
}

func (s *fakeSource) FrameCount() uint32 {
	if s.cell == nil {
		return 0
	}
	return s.cell.Delivered()
}

func (s *fakeSource) PropertyLimits(id PropertyID) (int32, int32, bool) {
	lim, ok := s.limits[id]
	if !ok {
		return 0, 0, false
	}
	return lim[0], lim[1], true
}

func (s *fakeSource) Property(id PropertyID) (int32, bool) {
	if _, ok := s.limits[id]; !ok {
		return 0, false
	}
	return s.values[id], true
}

func (s *fakeSource) SetProperty(id PropertyID, value int32) bool {
	lim, ok := s.limits[id]
	if !ok {
		return false
	}
	if value < lim[0] || value > lim[1] {
		return false
	}
	s.values[id] = value
	return true
}

func (s *fakeSource) SetAutoProperty(id PropertyID, enable bool) bool {
	if _, ok := s.limits[id]; !ok {
		return false
	}
	s.auto[id] = enable
	return true
}

func (s *fakeSource) FourCC() FourCC {
	return s.fourcc
}

func (s *fakeSource) Close() {
	s.closeCalls.Add(1)
	s.open.Store(false)
}

// produce publishes one synthetic frame, as the platform producer would.
func (s *fakeSource) produce(fill byte) {
	frame := make([]byte, s.width*s.height*3)
	for i := range frame {
		frame[i] = fill
	}
	s.cell.Publish(frame)
}

// loseDevice simulates the backend reporting a physically lost device.
func (s *fakeSource) loseDevice() {
	s.lost.Store(true)
}

// testDevices is the canonical single-device table used across tests.
func testDevices() []DeviceDescriptor {
	return []DeviceDescriptor{
		{
			Name: "Camera0",
			Path: "/dev/video0",
			Formats: []FormatDescriptor{
				{Width: 640, Height: 480, FourCC: MakeFourCC("YUYV")},
				{Width: 1280, Height: 720, FourCC: MakeFourCC("YUYV")},
			},
		},
	}
}

// newTestContext builds a Context over testDevices whose factory hands
// out the sources from the given queue in order.
func newTestContext(t interface{ Fatalf(string, ...any) }, sources ...*fakeSource) (*Context, *int) {
	next := 0
	ctx, err := New(Options{
		Enumerate: func() ([]DeviceDescriptor, error) {
			return testDevices(), nil
		},
		NewSource: func() Source {
			if next >= len(sources) {
				t.Fatalf("source factory called %d times, only %d sources queued", next+1, len(sources))
			}
			s := sources[next]
			next++
			return s
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ctx, &next
}
