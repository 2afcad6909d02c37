package pkg_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/photo-renamer/pkg"
)

func imgBase(token string) pkg.BaseName {
	return pkg.BaseName{Token: token, Kind: pkg.KindImage, Ext: ".jpg"}
}

func TestCollisionResolver_SameTokenIsExhaustive(t *testing.T) {
	for _, n := range []int{1, 2, 5, 12} {
		t.Run(fmt.Sprintf("%d files", n), func(t *testing.T) {
			proposals := make([]pkg.BaseName, n)
			for i := range proposals {
				proposals[i] = imgBase("20240101_120000")
			}

			names := pkg.ResolveDirectory(nil, proposals)

			want := []string{"20240101_120000_IMG.jpg"}
			for i := 1; i < n; i++ {
				want = append(want, fmt.Sprintf("20240101_120000_%d_IMG.jpg", i))
			}
			assert.Equal(t, want, names)
		})
	}
}

func TestCollisionResolver_DistinctNamesUntouched(t *testing.T) {
	names := pkg.ResolveDirectory(nil, []pkg.BaseName{
		imgBase("20240101_120000"),
		imgBase("20240101_120001"),
		{Token: "20240101_120000", Kind: pkg.KindVideo, Ext: ".mp4"},
		{Token: "20240101_120000", Kind: pkg.KindImage, Ext: ".png"},
	})
	assert.Equal(t, []string{
		"20240101_120000_IMG.jpg",
		"20240101_120001_IMG.jpg",
		"20240101_120000_VID.mp4",
		"20240101_120000_IMG.png",
	}, names)
}

func TestCollisionResolver_DiscoveryOrderDecidesSuffix(t *testing.T) {
	names := pkg.ResolveDirectory(nil, []pkg.BaseName{
		imgBase("20240101_120000"),
		imgBase("20230101_000000"),
		imgBase("20240101_120000"),
		imgBase("20230101_000000"),
		imgBase("20240101_120000"),
	})
	assert.Equal(t, []string{
		"20240101_120000_IMG.jpg",
		"20230101_000000_IMG.jpg",
		"20240101_120000_1_IMG.jpg",
		"20230101_000000_1_IMG.jpg",
		"20240101_120000_2_IMG.jpg",
	}, names)
}

func TestCollisionResolver_ExistingNamesAreAvoided(t *testing.T) {
	existing := []string{"20240101_120000_IMG.jpg", "20240101_120000_2_IMG.jpg"}
	names := pkg.ResolveDirectory(existing, []pkg.BaseName{
		imgBase("20240101_120000"),
		imgBase("20240101_120000"),
		imgBase("20240101_120000"),
	})
	// Lowest unused suffix first: 1 is free, 2 is taken, then 3.
	assert.Equal(t, []string{
		"20240101_120000_1_IMG.jpg",
		"20240101_120000_3_IMG.jpg",
		"20240101_120000_4_IMG.jpg",
	}, names)
}

func TestCollisionResolver_CaseInsensitive(t *testing.T) {
	resolver := pkg.NewCollisionResolver()
	resolver.Reserve("20240101_120000_IMG.JPG")

	assert.True(t, resolver.Taken("20240101_120000_IMG.jpg"))
	assert.Equal(t, "20240101_120000_1_IMG.jpg", resolver.Claim(imgBase("20240101_120000")))
}

func TestCollisionResolver_RegistriesAreIndependent(t *testing.T) {
	a := pkg.NewCollisionResolver()
	b := pkg.NewCollisionResolver()

	assert.Equal(t, "20240101_120000_IMG.jpg", a.Claim(imgBase("20240101_120000")))
	assert.Equal(t, "20240101_120000_IMG.jpg", b.Claim(imgBase("20240101_120000")))
	assert.Equal(t, "20240101_120000_1_IMG.jpg", a.Claim(imgBase("20240101_120000")))
}
