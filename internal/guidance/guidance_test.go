package guidance_test

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fitforge/internal/guidance"
	"fitforge/internal/services"
	"fitforge/internal/session"
	"fitforge/internal/testsupport"
)

func seedState(t *testing.T) *session.State {
	t.Helper()
	workDir := t.TempDir()
	avatar := filepath.Join(workDir, "avatar.jpg")
	testsupport.WritePersonImage(t, avatar, 512, 768)

	kp := make([][2]float64, session.KeypointCount2D)
	base := [session.KeypointCount2D][2]float64{
		{256, 80}, {240, 72}, {272, 72}, {228, 78}, {284, 78},
		{200, 190}, {312, 190}, {180, 300}, {332, 300}, {170, 400}, {342, 400},
		{220, 420}, {292, 420}, {216, 560}, {296, 560}, {214, 700}, {298, 700},
	}
	copy(kp, base[:])

	return &session.State{
		Request: session.Request{SessionID: "S1", UserID: "U1", AvatarKey: "a.jpg", GarmentKey: "g.jpg"},
		WorkDir: workDir,
		Inputs:  &session.InputImages{AvatarPath: avatar, GarmentPath: avatar},
		Pose: &session.PoseEstimate{
			Joints3D:       make([][3]float64, session.JointCount3D),
			Keypoints2D:    kp,
			Confidence:     0.8,
			BoundingBox:    [4]float64{160, 40, 190, 680},
			PersonDetected: true,
		},
		Mesh: &session.MeshFit{
			Gender:       session.GenderFemale,
			Measurements: map[string]float64{"height": 168.0, "chest": 88, "waist": 70, "hip": 94},
		},
	}
}

func TestExecuteRendersAllAssets(t *testing.T) {
	handler := guidance.NewHandler(nil)
	state := seedState(t)

	if err := handler.Prepare(context.Background(), state); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := handler.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, kind := range session.AssetKinds() {
		path, ok := state.Assets[kind]
		if !ok {
			t.Fatalf("asset %s missing from state", kind)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("asset %s not written: %v", kind, err)
		}
		if info.Size() == 0 {
			t.Fatalf("asset %s is empty", kind)
		}
	}

	// Maps must align with the avatar's dimensions.
	f, err := os.Open(state.Assets[session.AssetDepth])
	if err != nil {
		t.Fatalf("open depth map: %v", err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode depth map: %v", err)
	}
	if format != "png" {
		t.Fatalf("depth map format = %q, want png", format)
	}
	if cfg.Width != 512 || cfg.Height != 768 {
		t.Fatalf("depth map is %dx%d, want 512x768", cfg.Width, cfg.Height)
	}
}

func TestExecutePromptReflectsMesh(t *testing.T) {
	handler := guidance.NewHandler(nil)
	state := seedState(t)

	if err := handler.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	data, err := os.ReadFile(state.Assets[session.AssetPrompt])
	if err != nil {
		t.Fatalf("read prompt: %v", err)
	}
	prompt := string(data)
	if !strings.Contains(prompt, "a woman") {
		t.Fatalf("prompt missing gender phrase: %q", prompt)
	}
	if !strings.Contains(prompt, "168 cm") {
		t.Fatalf("prompt missing height: %q", prompt)
	}
}

func TestExecutePromptIsDeterministic(t *testing.T) {
	handler := guidance.NewHandler(nil)

	first := seedState(t)
	if err := handler.Execute(context.Background(), first); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	second := seedState(t)
	if err := handler.Execute(context.Background(), second); err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	a, _ := os.ReadFile(first.Assets[session.AssetPrompt])
	b, _ := os.ReadFile(second.Assets[session.AssetPrompt])
	if string(a) != string(b) {
		t.Fatalf("prompts differ: %q vs %q", a, b)
	}
}

func TestExecuteNoPersonStillRendersAssets(t *testing.T) {
	handler := guidance.NewHandler(nil)
	state := seedState(t)
	state.Pose.PersonDetected = false
	state.Mesh.Gender = session.GenderNeutral

	if err := handler.Execute(context.Background(), state); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(state.Assets) != len(session.AssetKinds()) {
		t.Fatalf("assets = %d, want %d", len(state.Assets), len(session.AssetKinds()))
	}
	data, _ := os.ReadFile(state.Assets[session.AssetPrompt])
	if !strings.Contains(string(data), "a person") {
		t.Fatalf("neutral prompt wrong: %q", data)
	}
}

func TestPrepareRequiresUpstreamOutputs(t *testing.T) {
	handler := guidance.NewHandler(nil)

	state := seedState(t)
	state.Mesh = nil
	if err := handler.Prepare(context.Background(), state); !errors.Is(err, services.ErrProcessing) {
		t.Fatalf("missing mesh: got %v", err)
	}

	state = seedState(t)
	state.Pose = nil
	if err := handler.Prepare(context.Background(), state); !errors.Is(err, services.ErrProcessing) {
		t.Fatalf("missing pose: got %v", err)
	}
}
