package normalize

import (
	"fmt"
	"reflect"
	"testing"
)

func TestImageFilter_ResolveDedupeAndBlock(t *testing.T) {
	f := DefaultImageFilter()

	got := f.Filter([]string{
		"logo.png",
		"//cdn.example.com/a.jpg",
		"/b.webp",
		"https://x.com/c.PNG",
	}, "https://shop.example.com/p/1")

	want := []string{
		"https://cdn.example.com/a.jpg",
		"https://shop.example.com/b.webp",
		"https://x.com/c.PNG",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

func TestImageFilter_DedupePreservesOrder(t *testing.T) {
	f := DefaultImageFilter()

	got := f.Filter([]string{
		"https://x.com/a.jpg",
		"https://x.com/b.jpg",
		"https://x.com/a.jpg",
	}, "https://x.com/p")

	want := []string{"https://x.com/a.jpg", "https://x.com/b.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

func TestImageFilter_ExtensionRequired(t *testing.T) {
	f := DefaultImageFilter()

	got := f.Filter([]string{
		"https://x.com/a.gif",
		"https://x.com/b.svg",
		"https://x.com/c",
		"https://x.com/d.jpeg",
	}, "https://x.com/p")

	want := []string{"https://x.com/d.jpeg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

func TestImageFilter_Blocklist(t *testing.T) {
	f := DefaultImageFilter()

	blocked := []string{
		"https://x.com/sprite-sheet.png",
		"https://x.com/brand-LOGO.jpg",
		"https://x.com/fav-icon.png",
		"https://x.com/hero-banner.webp",
		"https://x.com/placeholder.jpg",
		"https://x.com/user-avatar.png",
		"https://x.com/generic.jpg",
		"https://x.com/thumb_small.jpg",
	}
	if got := f.Filter(blocked, "https://x.com/p"); len(got) != 0 {
		t.Errorf("Filter(blocklisted) = %v, want empty", got)
	}
}

func TestImageFilter_CapAtMax(t *testing.T) {
	f := DefaultImageFilter()

	var raw []string
	for i := 0; i < 30; i++ {
		raw = append(raw, fmt.Sprintf("https://x.com/img-%02d.jpg", i))
	}
	got := f.Filter(raw, "https://x.com/p")
	if len(got) != f.MaxImages {
		t.Errorf("len(Filter) = %d, want %d", len(got), f.MaxImages)
	}
	if got[0] != "https://x.com/img-00.jpg" {
		t.Errorf("first image = %q, want first input preserved", got[0])
	}
}

func TestImageFilter_MalformedPageURL(t *testing.T) {
	f := DefaultImageFilter()

	// Resolution silently passes the original string through; the
	// absolute-URL requirement then rejects the bare relative path.
	got := f.Filter([]string{"/b.webp", "https://x.com/a.jpg"}, "::not a url::")
	want := []string{"https://x.com/a.jpg"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

func TestImageFilter_QueryStringIgnoredForExtension(t *testing.T) {
	f := DefaultImageFilter()

	got := f.Filter([]string{"https://x.com/a.jpg?w=800&h=600"}, "https://x.com/p")
	if len(got) != 1 {
		t.Errorf("Filter = %v, want the query-string URL kept", got)
	}
}
