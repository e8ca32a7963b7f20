package manifest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namesIn(assets []Asset, cat Category) []string {
	var out []string
	for _, a := range assets {
		if a.Category == cat {
			out = append(out, a.Name)
		}
	}
	return out
}

func TestBuild_DedupPrefersTechIcons(t *testing.T) {
	tech := []string{"armor_1", "laser_1"}
	swaps := []string{"special_swap", "laser_1"}

	assets := Build("/stellaris", "/out", tech, swaps)

	assert.Equal(t, []string{"armor_1", "laser_1"}, namesIn(assets, CategoryTechIcons))
	assert.Equal(t, []string{"special_swap"}, namesIn(assets, CategorySwapIcons))
}

func TestBuild_IconNamesSortedAndDeduplicated(t *testing.T) {
	tech := []string{"zebra", "apple", "zebra", "mango"}
	swaps := []string{"swap_b", "swap_a", "swap_b"}

	assets := Build("/stellaris", "/out", tech, swaps)

	assert.Equal(t, []string{"apple", "mango", "zebra"}, namesIn(assets, CategoryTechIcons))
	assert.Equal(t, []string{"swap_a", "swap_b"}, namesIn(assets, CategorySwapIcons))
}

func TestBuild_KeysUniqueAndInCanonicalCategoryOrder(t *testing.T) {
	assets := Build("/stellaris", "/out", []string{"a", "b"}, []string{"c"})

	seen := make(map[string]bool, len(assets))
	for _, a := range assets {
		require.False(t, seen[a.Key()], "duplicate key %s", a.Key())
		seen[a.Key()] = true
	}

	rank := make(map[Category]int)
	for i, c := range Categories() {
		rank[c] = i
	}
	last := -1
	for _, a := range assets {
		r, ok := rank[a.Category]
		require.True(t, ok, "unknown category %s", a.Category)
		require.GreaterOrEqual(t, r, last, "category %s out of order", a.Category)
		last = r
	}
}

func TestBuild_FixedCategoryIcons(t *testing.T) {
	assets := Build("/stellaris", "/out", nil, nil)

	cats := namesIn(assets, CategoryCategoryIcons)
	require.Len(t, cats, 13)
	assert.Contains(t, cats, "category_biology")
	assert.Contains(t, cats, "category_industry")
	assert.Equal(t, "category_archaeostudies", cats[0])

	for _, a := range assets {
		if a.Category != CategoryCategoryIcons {
			continue
		}
		assert.True(t, a.Lossless, "%s must be lossless", a.Key())
		assert.Equal(t,
			filepath.Join("/stellaris", "gfx", "interface", "icons", "technologies", "categories", a.Name+".dds"),
			a.SourceDDS)
	}
}

func TestBuild_QualityPolicy(t *testing.T) {
	assets := Build("/stellaris", "/out", []string{"laser_1"}, nil)

	for _, a := range assets {
		switch a.Category {
		case CategoryBackgrounds, CategoryUI:
			assert.False(t, a.Lossless, "%s must be lossy", a.Key())
		default:
			assert.True(t, a.Lossless, "%s must be lossless", a.Key())
		}
	}
}

func TestBuild_PathDerivation(t *testing.T) {
	assets := Build("/stellaris", "/out", []string{"laser_1"}, nil)

	var laser, bg Asset
	for _, a := range assets {
		switch a.Name {
		case "laser_1":
			laser = a
		case "tech_bg_physics":
			bg = a
		}
	}

	assert.Equal(t, filepath.Join("/stellaris", "gfx", "interface", "icons", "technologies", "laser_1.dds"), laser.SourceDDS)
	assert.Equal(t, filepath.Join("/out", "png", "tech_icons", "laser_1.png"), laser.DestPNG)
	assert.Equal(t, filepath.Join("/out", "avif", "tech_icons", "laser_1.avif"), laser.DestAVIF)

	assert.Equal(t, filepath.Join("/stellaris", "gfx", "interface", "tech_view", "tech_bg_physics.dds"), bg.SourceDDS)
	assert.Equal(t, filepath.Join("/out", "png", "backgrounds", "tech_bg_physics.png"), bg.DestPNG)
}

func TestBuild_FixedTextureCounts(t *testing.T) {
	assets := Build("/stellaris", "/out", nil, nil)

	assert.Len(t, namesIn(assets, CategoryBackgrounds), 5)
	assert.Len(t, namesIn(assets, CategoryUI), 2)
	assert.Equal(t, []string{CheckboxSheet}, namesIn(assets, CategorySprites))
	// 13 category icons + 5 backgrounds + 2 ui + 1 sprite sheet
	assert.Len(t, assets, 21)
}

func TestBuild_Deterministic(t *testing.T) {
	tech := []string{"b", "a"}
	swaps := []string{"d", "c"}

	first := Build("/stellaris", "/out", tech, swaps)
	second := Build("/stellaris", "/out", tech, swaps)

	require.Equal(t, first, second)
	assert.Equal(t, Hash(first), Hash(second))
}

func TestCheckboxCrops_FixedRegions(t *testing.T) {
	crops := CheckboxCrops()
	require.Len(t, crops, 3)
	assert.Equal(t, CropRegion{Name: "checkbox_normal", X: 11, Y: 11, Width: 26, Height: 26}, crops[0])
	assert.Equal(t, CropRegion{Name: "checkbox_pressed", X: 59, Y: 11, Width: 26, Height: 26}, crops[1])
	assert.Equal(t, CropRegion{Name: "checkbox_hover", X: 107, Y: 11, Width: 26, Height: 26}, crops[2])
}

func TestCheckboxSheetPNG(t *testing.T) {
	assert.Equal(t,
		filepath.Join("/out", "png", "sprites", "button_24_24_checkbox.png"),
		CheckboxSheetPNG("/out"))
}
