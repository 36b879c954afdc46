package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// rigDocument returns a glTF document with a hip -> knee chain whose skin lists the knee
// first, and a one second "Walk" animation raising the hip from y=1 to y=3.
func rigDocument(t *testing.T) string {
	t.Helper()

	floats := []float32{
		0, 1, // times
		0, 1, 0, 0, 3, 0, // hip translations
	}
	knee := mgl32.Translate3D(0, -1.5, 0)
	hip := mgl32.Translate3D(0, -1, 0)
	floats = append(floats, knee[:]...)
	floats = append(floats, hip[:]...)

	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, floats); err != nil {
		t.Fatalf("binary.Write: %v", err)
	}
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "nodes": [
    {"name": "hip", "children": [1], "translation": [0, 1, 0]},
    {"name": "knee", "translation": [0, 0.5, 0]}
  ],
  "skins": [{"joints": [1, 0], "inverseBindMatrices": 2}],
  "animations": [{
    "name": "Walk",
    "channels": [{"sampler": 0, "target": {"node": 0, "path": "translation"}}],
    "samplers": [{"input": 0, "output": 1}]
  }],
  "buffers": [{"byteLength": %d, "uri": %q}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 8},
    {"buffer": 0, "byteOffset": 8, "byteLength": 24},
    {"buffer": 0, "byteOffset": 32, "byteLength": 128}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR", "min": [0], "max": [1]},
    {"bufferView": 1, "componentType": 5126, "count": 2, "type": "VEC3"},
    {"bufferView": 2, "componentType": 5126, "count": 2, "type": "MAT4"}
  ]
}`, buf.Len(), uri)
}

func TestLoadReader(t *testing.T) {
	l := NewLoader(WithSampleRate(4))
	asset, err := l.LoadReader("rig", strings.NewReader(rigDocument(t)))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}

	skel := asset.Skeleton
	if skel.JointCount() != 2 {
		t.Fatalf("JointCount = %d, want 2", skel.JointCount())
	}
	if skel.Joint(0).Name != "hip" || skel.Joint(1).Name != "knee" {
		t.Errorf("joints = %q, %q, want hip, knee", skel.Joint(0).Name, skel.Joint(1).Name)
	}
	if skel.ParentIndex(1) != 0 {
		t.Errorf("knee parent = %d, want 0", skel.ParentIndex(1))
	}
	if got := skel.Joint(1).InverseBindMatrix; got != mgl32.Translate3D(0, -1.5, 0) {
		t.Errorf("knee inverse bind = %v", got)
	}

	if len(asset.Clips) != 1 || asset.ClipNames[0] != "Walk" {
		t.Fatalf("clips = %v, want [Walk]", asset.ClipNames)
	}
	clip, err := l.Arena().Clip(asset.Clips[0])
	if err != nil {
		t.Fatalf("Clip: %v", err)
	}
	if clip.SampleCount() != 4 || clip.Duration() != 1 {
		t.Errorf("samples = %d, duration = %v, want 4, 1", clip.SampleCount(), clip.Duration())
	}

	tests := []struct {
		sample int
		hipY   float32
	}{
		{0, 1},
		{1, 1.5},
		{2, 2},
		{3, 2.5},
	}
	for _, tt := range tests {
		poses := clip.Sample(tt.sample).LocalPoses
		if got := poses[0].Translation; !got.ApproxEqualThreshold(mgl32.Vec3{0, tt.hipY, 0}, 1e-5) {
			t.Errorf("sample %d hip = %v, want [0 %v 0]", tt.sample, got, tt.hipY)
		}
		if got := poses[1].Translation; !got.ApproxEqualThreshold(mgl32.Vec3{0, 0.5, 0}, 1e-5) {
			t.Errorf("sample %d knee = %v, want rest [0 0.5 0]", tt.sample, got)
		}
		if got := poses[0].Scale; got < 0.9999 || got > 1.0001 {
			t.Errorf("sample %d hip scale = %v, want 1", tt.sample, got)
		}
	}

	again, err := l.LoadReader("rig", strings.NewReader("not read"))
	if err != nil || again != asset {
		t.Errorf("second LoadReader = %p, %v, want cached %p", again, err, asset)
	}
	if got, ok := l.Get("rig"); !ok || got != asset {
		t.Error("Get did not return the cached asset")
	}
}

func TestClipDurations(t *testing.T) {
	l := NewLoader(WithSampleRate(4), WithClipDurations(map[string]float32{"Walk": 2}))
	asset, err := l.LoadReader("rig", strings.NewReader(rigDocument(t)))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	clip, _ := l.Arena().Clip(asset.Clips[0])
	if clip.Duration() != 2 || clip.SamplesPerSecond() != 2 {
		t.Errorf("duration = %v, rate = %v, want 2, 2", clip.Duration(), clip.SamplesPerSecond())
	}
}

func TestSharedArenaDuplicateClip(t *testing.T) {
	arena := animation.NewClipArena()
	l := NewLoader(WithClipArena(arena))
	if _, err := l.LoadReader("a", strings.NewReader(rigDocument(t))); err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if arena.Len() != 1 {
		t.Errorf("arena Len = %d, want 1", arena.Len())
	}
	_, err := l.LoadReader("b", strings.NewReader(rigDocument(t)))
	if !errors.Is(err, animation.ErrDuplicateClip) {
		t.Errorf("err = %v, want ErrDuplicateClip", err)
	}
	if _, ok := l.Get("b"); ok {
		t.Error("failed load was cached")
	}
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader()

	if _, err := l.LoadGLTF("rig.fbx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("fbx: err = %v, want ErrUnsupportedFormat", err)
	}

	noSkin := `{"asset": {"version": "2.0"}, "nodes": [{"name": "lonely"}]}`
	if _, err := l.LoadReader("empty", strings.NewReader(noSkin)); !errors.Is(err, ErrNoSkin) {
		t.Errorf("no skin: err = %v, want ErrNoSkin", err)
	}

	if _, err := l.LoadGLTF(filepath.Join(t.TempDir(), "missing.gltf")); err == nil {
		t.Error("missing file: expected error")
	}
}

func TestLoadGLTFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig.gltf")
	if err := os.WriteFile(path, []byte(rigDocument(t)), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l := NewLoader()
	asset, err := l.LoadGLTF(path)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if asset.Name != "rig" {
		t.Errorf("Name = %q, want rig", asset.Name)
	}
	clip, _ := l.Arena().Clip(asset.Clips[0])
	if clip.SampleCount() != DefaultSampleRate {
		t.Errorf("samples = %d, want %d", clip.SampleCount(), DefaultSampleRate)
	}
}

func TestLoadBlendTree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	def := `{"type": "LerpNode", "param": "speed", "inputs": [{"type": "ClipNode", "clip_source": "Idle"}, {"type": "ClipNode", "clip_source": "Walk"}]}`
	if err := os.WriteFile(path, []byte(def), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l := NewLoader()
	first, err := l.LoadBlendTree(path)
	if err != nil {
		t.Fatalf("LoadBlendTree: %v", err)
	}
	if names := first.ClipNames(); len(names) != 2 || names[0] != "Idle" || names[1] != "Walk" {
		t.Errorf("ClipNames = %v, want [Idle Walk]", names)
	}

	second, err := l.LoadBlendTree(path)
	if err != nil || second != first {
		t.Errorf("second LoadBlendTree = %p, %v, want cached %p", second, err, first)
	}
}

func TestResampleTimes(t *testing.T) {
	tests := []struct {
		name    string
		maxTime float32
		rate    float32
		want    []float32
	}{
		{"exact", 1, 4, []float32{0.25, 0.5, 0.75, 1}},
		{"half second", 0.5, 4, []float32{0.25, 0.5}},
		{"static pose", 0, 30, []float32{1.0 / 30}},
		{"shorter than a frame", 0.01, 30, []float32{0.01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, got := resampleTimes(tt.maxTime, tt.rate)
			if count != len(tt.want) || len(got) != len(tt.want) {
				t.Fatalf("count = %d, times = %v, want %v", count, got, tt.want)
			}
			for i := range got {
				if d := got[i] - tt.want[i]; d > 1e-6 || d < -1e-6 {
					t.Errorf("times[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestKeySegment(t *testing.T) {
	times := []float32{0, 1, 3}
	tests := []struct {
		name   string
		t      float32
		interp gltf.Interpolation
		i      int
		f      float32
	}{
		{"before", -1, gltf.InterpolationLinear, 0, 0},
		{"first key", 0, gltf.InterpolationLinear, 0, 0},
		{"mid first", 0.25, gltf.InterpolationLinear, 0, 0.25},
		{"mid second", 2, gltf.InterpolationLinear, 1, 0.5},
		{"step", 2, gltf.InterpolationStep, 1, 0},
		{"after", 5, gltf.InterpolationLinear, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, f := keySegment(times, tt.t, tt.interp)
			if i != tt.i || f != tt.f {
				t.Errorf("keySegment(%v) = %d, %v, want %d, %v", tt.t, i, f, tt.i, tt.f)
			}
		})
	}
}

func TestQuatChannelShortestPath(t *testing.T) {
	a := mgl32.QuatRotate(0.1, mgl32.Vec3{0, 1, 0})
	b := mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0}).Scale(-1)
	c := &quatChannel{times: []float32{0, 1}, values: []mgl32.Quat{a, b}, interp: gltf.InterpolationLinear}

	got := c.sample(0.5)
	want := mgl32.QuatRotate(0.2, mgl32.Vec3{0, 1, 0})
	if !got.ApproxEqualThreshold(want, 1e-4) && !got.ApproxEqualThreshold(want.Scale(-1), 1e-4) {
		t.Errorf("sample = %v, want %v", got, want)
	}
}

func TestKeyValuesCubicSpline(t *testing.T) {
	values := []float32{9, 1, 9, 9, 2, 9}
	got := keyValues(values, 2, gltf.InterpolationCubicSpline)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("keyValues = %v, want [1 2]", got)
	}

	padded := keyValues([]float32{4}, 3, gltf.InterpolationLinear)
	if len(padded) != 3 || padded[2] != 4 {
		t.Errorf("padded = %v, want [4 4 4]", padded)
	}
}

func TestUniqueJointName(t *testing.T) {
	used := map[string]bool{}
	got := []string{
		uniqueJointName("arm", 0, used),
		uniqueJointName("arm", 1, used),
		uniqueJointName("", 2, used),
		uniqueJointName("arm", 3, used),
	}
	want := []string{"arm", "arm_1", "joint_2", "arm_2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("name %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGLTFIndex(t *testing.T) {
	three := 3
	tests := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"int", 2, 2, true},
		{"pointer", &three, 3, true},
		{"nil pointer", (*int)(nil), 0, false},
		{"uint32", uint32(4), 4, true},
		{"other", "5", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := gltfIndex(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("gltfIndex(%v) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
