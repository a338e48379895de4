package domain

import (
	"errors"
	"testing"
)

func TestModDescriptor_Key(t *testing.T) {
	a := ModDescriptor{Name: "LazyLib", DownloadURL: "https://example.com/a.zip"}
	b := ModDescriptor{Name: "LazyLib", DownloadURL: "https://example.com/b.zip"}

	if a.Key() == b.Key() {
		t.Errorf("Key() should differ for different URLs, both %q", a.Key())
	}
	a.Version = "1.0"
	if a.Key() != "LazyLib|https://example.com/a.zip" {
		t.Errorf("Key() = %q, version must not be part of it", a.Key())
	}
}

func TestModDescriptor_ParsedURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr error
	}{
		{"https://example.com/mod.zip", nil},
		{"  http://example.com/mod.zip  ", nil},
		{"", ErrNoDownloadURL},
		{"   ", ErrNoDownloadURL},
		{"ftp://example.com/mod.zip", ErrInvalidURL},
		{"not a url", ErrInvalidURL},
		{"https://", ErrInvalidURL},
		{"https://exa mple.com/%zz", ErrInvalidURL},
	}

	for _, tt := range tests {
		m := ModDescriptor{Name: "m", DownloadURL: tt.url}
		_, err := m.ParsedURL()
		if tt.wantErr == nil {
			if err != nil {
				t.Errorf("ParsedURL(%q) unexpected error: %v", tt.url, err)
			}
			continue
		}
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParsedURL(%q) error = %v, want %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestModDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mod     ModDescriptor
		wantErr error
	}{
		{"valid", ModDescriptor{Name: "LazyLib", DownloadURL: "https://example.com/a.zip"}, nil},
		{"missing url allowed", ModDescriptor{Name: "LazyLib"}, nil},
		{"missing name", ModDescriptor{DownloadURL: "https://example.com/a.zip"}, ErrInvalidConfig},
		{"bad url", ModDescriptor{Name: "LazyLib", DownloadURL: "file:///etc/passwd"}, ErrInvalidURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mod.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestModlist_SetVersion(t *testing.T) {
	list := DefaultModlist()
	list.Mods = []ModDescriptor{
		{Name: "A", DownloadURL: "https://example.com/a.zip"},
		{Name: "B", DownloadURL: "https://example.com/b.zip"},
	}

	if !list.SetVersion(list.Mods[1].Key(), "2.0") {
		t.Fatal("SetVersion() = false for an existing mod")
	}
	if list.Mods[1].Version != "2.0" || list.Mods[0].Version != "" {
		t.Errorf("versions = %q, %q; want \"\", \"2.0\"", list.Mods[0].Version, list.Mods[1].Version)
	}
	if list.SetVersion("missing|url", "1.0") {
		t.Error("SetVersion() = true for an unknown mod")
	}
}

func TestDefaultModlist(t *testing.T) {
	list := DefaultModlist()
	if list.Name != "ASTRA" || list.Version != "1.0" || list.GameVersion != "0.98a-RC8" {
		t.Errorf("DefaultModlist() = %+v", list)
	}
	if list.Mods == nil || len(list.Mods) != 0 {
		t.Errorf("DefaultModlist().Mods = %v, want empty non-nil", list.Mods)
	}
}
