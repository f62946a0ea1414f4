package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/capnode/capnode/internal/capture"
	"github.com/capnode/capnode/internal/logging"
)

func init() {
	logging.Initialize(logging.Config{Level: "error", Format: "text"})
}

// scriptedSource is an in-memory capture.Source for API tests. Frames
// appear only when the test publishes them.
type scriptedSource struct {
	cell   *capture.FrameCell
	width  uint32
	height uint32
	fourcc capture.FourCC
	open   bool
	limits map[capture.PropertyID][2]int32
	values map[capture.PropertyID]int32
	auto   map[capture.PropertyID]bool
}

func newScriptedSource() *scriptedSource {
	return &scriptedSource{
		limits: map[capture.PropertyID][2]int32{
			capture.PropExposure:   {-11, 1},
			capture.PropBrightness: {0, 255},
		},
		values: make(map[capture.PropertyID]int32),
		auto:   make(map[capture.PropertyID]bool),
	}
}

func (s *scriptedSource) Open(_ *capture.DeviceDescriptor, width, height uint32, fourcc capture.FourCC) bool {
	s.width = width
	s.height = height
	s.fourcc = fourcc
	s.cell = capture.NewFrameCell(int(width*height*3), nil)
	s.open = true
	return true
}

func (s *scriptedSource) IsOpen() bool { return s.open }

func (s *scriptedSource) CaptureFrame(dst []byte) bool {
	if !s.open {
		return false
	}
	return s.cell.Take(dst)
}

func (s *scriptedSource) HasNewFrame() bool {
	return s.cell != nil && s.cell.Pending()
}

func (s *scriptedSource) FrameCount() uint32 {
	if s.cell == nil {
		return 0
	}
	return s.cell.Delivered()
}

func (s *scriptedSource) PropertyLimits(id capture.PropertyID) (int32, int32, bool) {
	lim, ok := s.limits[id]
	if !ok {
		return 0, 0, false
	}
	return lim[0], lim[1], true
}

func (s *scriptedSource) Property(id capture.PropertyID) (int32, bool) {
	if _, ok := s.limits[id]; !ok {
		return 0, false
	}
	return s.values[id], true
}

func (s *scriptedSource) SetProperty(id capture.PropertyID, value int32) bool {
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

func (s *scriptedSource) SetAutoProperty(id capture.PropertyID, enable bool) bool {
	if _, ok := s.limits[id]; !ok {
		return false
	}
	s.auto[id] = enable
	return true
}

func (s *scriptedSource) FourCC() capture.FourCC { return s.fourcc }

func (s *scriptedSource) Close() { s.open = false }

func (s *scriptedSource) publish(fill byte) {
	frame := make([]byte, s.width*s.height*3)
	for i := range frame {
		frame[i] = fill
	}
	s.cell.Publish(frame)
}

// newTestServer builds a server over a single fake camera and returns
// the httptest server plus the scripted source behind stream opens.
func newTestServer(t *testing.T, opts *Options) (*httptest.Server, *scriptedSource) {
	t.Helper()

	src := newScriptedSource()
	ctx, err := capture.New(capture.Options{
		Enumerate: func() ([]capture.DeviceDescriptor, error) {
			return []capture.DeviceDescriptor{
				{
					Name:     "Test Camera",
					Path:     "/dev/video9",
					StableID: "usb-test-video-index0",
					Formats: []capture.FormatDescriptor{
						{Width: 640, Height: 480, FourCC: capture.MakeFourCC("YUYV"), Framerates: []float64{30, 60}},
						{Width: 1280, Height: 720, FourCC: capture.MakeFourCC("MJPG")},
					},
				},
			}, nil
		},
		NewSource: func() capture.Source { return src },
	})
	if err != nil {
		t.Fatalf("capture.New: %v", err)
	}
	t.Cleanup(ctx.Close)

	if opts == nil {
		opts = &Options{}
	}
	opts.Capture = ctx

	server := NewServer(opts)
	ts := httptest.NewServer(server.mux)
	t.Cleanup(ts.Close)

	return ts, src
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestHealthCheck(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	var health HealthData
	if status := getJSON(t, ts.URL+"/api/health", &health); status != http.StatusOK {
		t.Fatalf("health status = %d, want %d", status, http.StatusOK)
	}
	if health.Status != "ok" {
		t.Errorf("health.Status = %q, want %q", health.Status, "ok")
	}
}

func TestDeviceListing(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	var list DeviceListData
	if status := getJSON(t, ts.URL+"/api/devices", &list); status != http.StatusOK {
		t.Fatalf("list status = %d, want %d", status, http.StatusOK)
	}
	if list.Count != 1 {
		t.Fatalf("device count = %d, want 1", list.Count)
	}

	dev := list.Devices[0]
	if dev.Name != "Test Camera" {
		t.Errorf("device name = %q, want %q", dev.Name, "Test Camera")
	}
	if dev.StableID != "usb-test-video-index0" {
		t.Errorf("stable id = %q, want %q", dev.StableID, "usb-test-video-index0")
	}
	if len(dev.Formats) != 2 {
		t.Fatalf("format count = %d, want 2", len(dev.Formats))
	}
	if dev.Formats[1].FourCC != "MJPG" {
		t.Errorf("formats[1].FourCC = %q, want %q", dev.Formats[1].FourCC, "MJPG")
	}
	if len(dev.Formats[0].Framerates) != 2 || dev.Formats[0].Framerates[0] != 30 {
		t.Errorf("formats[0].Framerates = %v, want [30 60]", dev.Formats[0].Framerates)
	}
	if len(dev.Formats[1].Framerates) != 0 {
		t.Errorf("formats[1].Framerates = %v, want empty", dev.Formats[1].Framerates)
	}

	if status := getJSON(t, ts.URL+"/api/devices/7", nil); status != http.StatusNotFound {
		t.Errorf("unknown device status = %d, want %d", status, http.StatusNotFound)
	}
}

func TestStreamLifecycle(t *testing.T) {
	ts, src := newTestServer(t, nil)

	// Open
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/streams", StreamOpenBody{DeviceID: 0, FormatID: 0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("open status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var stream StreamData
	if err := json.NewDecoder(resp.Body).Decode(&stream); err != nil {
		t.Fatalf("decode open response: %v", err)
	}
	resp.Body.Close()

	if stream.Handle != 0 {
		t.Errorf("first handle = %d, want 0", stream.Handle)
	}
	if !stream.Open {
		t.Error("stream.Open = false, want true")
	}
	if stream.Width != 640 || stream.Height != 480 {
		t.Errorf("stream mode = %dx%d, want 640x480", stream.Width, stream.Height)
	}

	streamURL := fmt.Sprintf("%s/api/streams/%d", ts.URL, stream.Handle)

	// No frame yet
	if status := getJSON(t, streamURL+"/frame", nil); status != http.StatusConflict {
		t.Errorf("frame before publish status = %d, want %d", status, http.StatusConflict)
	}

	// Publish one frame, then grab it as JPEG
	src.publish(0x40)

	frameResp, err := http.Get(streamURL + "/frame")
	if err != nil {
		t.Fatalf("GET frame: %v", err)
	}
	defer frameResp.Body.Close()
	if frameResp.StatusCode != http.StatusOK {
		t.Fatalf("frame status = %d, want %d", frameResp.StatusCode, http.StatusOK)
	}
	if ct := frameResp.Header.Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("frame Content-Type = %q, want %q", ct, "image/jpeg")
	}
	data, _ := io.ReadAll(frameResp.Body)
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("frame body is not a JPEG")
	}

	// Frame is consumed, second grab conflicts again
	if status := getJSON(t, streamURL+"/frame", nil); status != http.StatusConflict {
		t.Errorf("second frame status = %d, want %d", status, http.StatusConflict)
	}

	var status StreamData
	if code := getJSON(t, streamURL, &status); code != http.StatusOK {
		t.Fatalf("get stream status = %d, want %d", code, http.StatusOK)
	}
	if status.FrameCount != 1 {
		t.Errorf("frame count = %d, want 1", status.FrameCount)
	}
	if status.NewFrame {
		t.Error("new_frame = true after grab, want false")
	}

	// Close
	resp = doJSON(t, http.MethodDelete, streamURL, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		t.Fatalf("close status = %d", resp.StatusCode)
	}

	if code := getJSON(t, streamURL, nil); code != http.StatusNotFound {
		t.Errorf("get after close status = %d, want %d", code, http.StatusNotFound)
	}

	resp = doJSON(t, http.MethodDelete, streamURL, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("double close status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestOpenStreamInvalidOrdinals(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	tests := []struct {
		name string
		body StreamOpenBody
	}{
		{"unknown device", StreamOpenBody{DeviceID: 5, FormatID: 0}},
		{"unknown format", StreamOpenBody{DeviceID: 0, FormatID: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/streams", tt.body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("open status = %d, want %d", resp.StatusCode, http.StatusUnprocessableEntity)
			}
		})
	}
}

func TestStreamProperties(t *testing.T) {
	ts, src := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/streams", StreamOpenBody{DeviceID: 0, FormatID: 0})
	var stream StreamData
	if err := json.NewDecoder(resp.Body).Decode(&stream); err != nil {
		t.Fatalf("decode open response: %v", err)
	}
	resp.Body.Close()

	base := fmt.Sprintf("%s/api/streams/%d/properties", ts.URL, stream.Handle)

	var limits PropertyLimitsData
	if status := getJSON(t, base+"/exposure", &limits); status != http.StatusOK {
		t.Fatalf("limits status = %d, want %d", status, http.StatusOK)
	}
	if limits.Min != -11 || limits.Max != 1 {
		t.Errorf("exposure limits = [%d,%d], want [-11,1]", limits.Min, limits.Max)
	}

	// Unsupported on this source
	if status := getJSON(t, base+"/zoom", nil); status != http.StatusNotFound {
		t.Errorf("unsupported property status = %d, want %d", status, http.StatusNotFound)
	}

	// Unknown name
	if status := getJSON(t, base+"/bogus", nil); status != http.StatusUnprocessableEntity {
		t.Errorf("unknown property status = %d, want %d", status, http.StatusUnprocessableEntity)
	}

	// Manual value inside and outside the range
	resp = doJSON(t, http.MethodPut, base+"/exposure", PropertySetBody{Value: -5})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		t.Errorf("set in range status = %d", resp.StatusCode)
	}

	// The set value reads back
	if status := getJSON(t, base+"/exposure", &limits); status != http.StatusOK {
		t.Fatalf("limits after set status = %d, want %d", status, http.StatusOK)
	}
	if limits.Value != -5 {
		t.Errorf("exposure value = %d, want -5", limits.Value)
	}

	resp = doJSON(t, http.MethodPut, base+"/exposure", PropertySetBody{Value: 100})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("set out of range status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	// Auto mode
	resp = doJSON(t, http.MethodPut, base+"/exposure/auto", PropertyAutoBody{Enabled: true})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		t.Errorf("set auto status = %d", resp.StatusCode)
	}
	if !src.auto[capture.PropExposure] {
		t.Error("auto exposure not enabled on source")
	}
}

func TestBasicAuth(t *testing.T) {
	ts, _ := newTestServer(t, &Options{
		AuthUsername: "admin",
		AuthPassword: "secret",
	})

	// Health stays open
	if status := getJSON(t, ts.URL+"/api/health", nil); status != http.StatusOK {
		t.Errorf("health status = %d, want %d", status, http.StatusOK)
	}

	// Devices require credentials
	if status := getJSON(t, ts.URL+"/api/devices", nil); status != http.StatusUnauthorized {
		t.Errorf("no-auth status = %d, want %d", status, http.StatusUnauthorized)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/devices", nil)
	req.SetBasicAuth("admin", "wrong")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with bad auth: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad-auth status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/api/devices", nil)
	req.SetBasicAuth("admin", "secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with auth: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("good-auth status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestLogsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	logging.GetLogger("api").Error("synthetic test entry")

	var logs LogsData
	if status := getJSON(t, ts.URL+"/api/logs", &logs); status != http.StatusOK {
		t.Fatalf("logs status = %d, want %d", status, http.StatusOK)
	}
	if logs.Count == 0 {
		t.Error("logs count = 0, want at least one entry")
	}
}

func TestEncodeJPEGDimensions(t *testing.T) {
	frame := make([]byte, 8*4*3)
	for i := range frame {
		frame[i] = byte(i)
	}

	data, err := encodeJPEG(frame, 8, 4)
	if err != nil {
		t.Fatalf("encodeJPEG: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("encodeJPEG returned empty output")
	}
	if data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("output missing JPEG SOI marker")
	}
}
