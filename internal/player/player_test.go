package player

import (
	"errors"
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"mpv", "mpv", false},
		{"VLC", "vlc", false},
		{"iina", "iina", false},
		{"celluloid", "celluloid", false},
		{"winamp", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.name, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && p.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.want)
			}
		})
	}
}

func TestMPVArgs(t *testing.T) {
	m := &MPV{userAgent: "UA/1.0"}

	got := m.args([]string{"https://cdn.example.com/a.mp4"}, "Clip")
	want := []string{"--force-media-title=Clip", "--really-quiet", "--user-agent=UA/1.0", "--", "https://cdn.example.com/a.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args() = %q, want %q", got, want)
	}

	got = (&MPV{}).args([]string{"p0.ts", "p1.ts"}, "Show")
	want = []string{"--force-media-title=Show", "--really-quiet", "--merge-files", "--", "p0.ts", "p1.ts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args() = %q, want %q", got, want)
	}
}

func TestMPVArgsKeepTitleInOneArg(t *testing.T) {
	// a hostile title must not split into extra flags
	got := (&MPV{}).args([]string{"u"}, "x --script=/tmp/evil.lua")
	if got[0] != "--force-media-title=x --script=/tmp/evil.lua" {
		t.Errorf("title arg = %q", got[0])
	}
}

func TestVLCArgs(t *testing.T) {
	got := (&VLC{userAgent: "UA/1.0"}).args([]string{"a.mp4"}, "Clip")
	want := []string{"--meta-title", "Clip", "--play-and-exit", "--http-user-agent", "UA/1.0", "--", "a.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args() = %q, want %q", got, want)
	}
}

func TestGenericArgs(t *testing.T) {
	got := (&Generic{name: "iina"}).args([]string{"a.mp4"}, "Clip")
	want := []string{"--force-media-title=Clip", "a.mp4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args() = %q, want %q", got, want)
	}
}

type fakePlayer struct {
	urls  []string
	title string
	err   error
}

func (f *fakePlayer) Play(urls []string, title string) error {
	f.urls, f.title = urls, title
	return f.err
}
func (f *fakePlayer) Name() string    { return "fake" }
func (f *fakePlayer) Available() bool { return true }

func TestDispatcher(t *testing.T) {
	p := &fakePlayer{}
	d := NewDispatcher(p, nil)

	if err := d.DownloadURLs([]string{"a", "b"}, "Show", "ts", 10, "/out", true); err != nil {
		t.Fatalf("DownloadURLs() error = %v", err)
	}
	if !reflect.DeepEqual(p.urls, []string{"a", "b"}) || p.title != "Show" {
		t.Errorf("played %q as %q", p.urls, p.title)
	}

	if err := d.DownloadStream("https://live.example.com/x.m3u8", "Live", "mp4", "/out"); err != nil {
		t.Fatalf("DownloadStream() error = %v", err)
	}
	if !reflect.DeepEqual(p.urls, []string{"https://live.example.com/x.m3u8"}) {
		t.Errorf("played %q", p.urls)
	}

	if err := d.DownloadURLs(nil, "x", "", 0, "", false); err == nil {
		t.Error("expected error for empty URL list")
	}

	p.err = errors.New("exec: not found")
	if err := d.DownloadURLs([]string{"a"}, "x", "", 0, "", false); err == nil {
		t.Error("expected player error to propagate")
	}
}
