// Package manifest builds the ordered list of texture assets to extract
// from a Stellaris installation and convert for web use.
package manifest

import (
	"path/filepath"
	"sort"
)

// Category groups assets by their output subdirectory.
type Category string

const (
	CategoryTechIcons     Category = "tech_icons"
	CategorySwapIcons     Category = "swap_icons"
	CategoryCategoryIcons Category = "category_icons"
	CategoryBackgrounds   Category = "backgrounds"
	CategoryUI            Category = "ui"
	CategorySprites       Category = "sprites"
)

// Categories returns all categories in canonical order. Manifest entries,
// output directories and listings all follow this order.
func Categories() []Category {
	return []Category{
		CategoryTechIcons,
		CategorySwapIcons,
		CategoryCategoryIcons,
		CategoryBackgrounds,
		CategoryUI,
		CategorySprites,
	}
}

// Asset is a single texture to extract and convert.
//
// SourceDDS may point at a file that does not exist; the pipeline reports
// such entries as skipped rather than failing the run.
type Asset struct {
	Name      string
	Category  Category
	SourceDDS string
	DestPNG   string
	DestAVIF  string
	Lossless  bool
}

// Key returns the "category/name" identifier, unique across the manifest.
func (a Asset) Key() string {
	return string(a.Category) + "/" + a.Name
}

// The fixed research areas whose category icons are always extracted.
var researchAreas = []string{
	"archaeostudies", "biology", "computing", "field_manipulation",
	"industry", "materials", "military_theory", "new_worlds",
	"particles", "propulsion", "psionics", "statecraft", "voidcraft",
}

type fixedTexture struct {
	name string
	rel  string
}

var backgroundTextures = []fixedTexture{
	{"tech_bg_physics", "gfx/interface/tech_view/tech_bg_physics.dds"},
	{"tech_bg_society", "gfx/interface/tech_view/tech_bg_society.dds"},
	{"tech_bg_engineering", "gfx/interface/tech_view/tech_bg_engineering.dds"},
	{"tech_bg_rare", "gfx/interface/tech_view/tech_bg_rare.dds"},
	{"tech_bg_dangerous", "gfx/interface/tech_view/tech_bg_dangerous.dds"},
}

var uiTextures = []fixedTexture{
	{"background_tutorial_detailed", "gfx/interface/tutorial_mission_window/background_tutorial_detailed.dds"},
	{"extradimensional_blue_room", "gfx/portraits/city_sets/extradimensional_blue_room.dds"},
}

// CheckboxSheet is the sprite sheet the checkbox crops are cut from.
const CheckboxSheet = "button_24_24_checkbox"

var checkboxSprite = fixedTexture{CheckboxSheet, "gfx/interface/buttons/button_24_24_checkbox.dds"}

// CropRegion is a named rectangle over the converted checkbox sprite sheet.
type CropRegion struct {
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// CheckboxCrops returns the fixed crop regions in processing order.
func CheckboxCrops() []CropRegion {
	return []CropRegion{
		{Name: "checkbox_normal", X: 11, Y: 11, Width: 26, Height: 26},
		{Name: "checkbox_pressed", X: 59, Y: 11, Width: 26, Height: 26},
		{Name: "checkbox_hover", X: 107, Y: 11, Width: 26, Height: 26},
	}
}

// DestPNG returns the intermediate PNG path for an asset under outputRoot.
func DestPNG(outputRoot string, cat Category, name string) string {
	return filepath.Join(outputRoot, "png", string(cat), name+".png")
}

// DestAVIF returns the final AVIF path for an asset under outputRoot.
func DestAVIF(outputRoot string, cat Category, name string) string {
	return filepath.Join(outputRoot, "avif", string(cat), name+".avif")
}

// CheckboxSheetPNG returns the converted sprite sheet path the crop pass
// reads from.
func CheckboxSheetPNG(outputRoot string) string {
	return DestPNG(outputRoot, CategorySprites, CheckboxSheet)
}

// Build assembles the complete asset manifest.
//
// techIcons and swapNames come from the metadata files and may contain
// duplicates; Build sorts both and removes any swap name that already
// appears as a tech icon, so every (category, name) pair is unique.
// Fixed-list categories keep their declaration order. Backgrounds and UI
// textures are large photographic surfaces and use the lossy policy;
// everything else is encoded losslessly.
//
// Identical inputs always produce an identical manifest.
func Build(stellarisRoot, outputRoot string, techIcons, swapNames []string) []Asset {
	tech := uniqueSorted(techIcons)
	techSet := make(map[string]bool, len(tech))
	for _, icon := range tech {
		techSet[icon] = true
	}

	swaps := make([]string, 0, len(swapNames))
	for _, name := range uniqueSorted(swapNames) {
		if techSet[name] {
			continue
		}
		swaps = append(swaps, name)
	}

	iconsDir := filepath.Join(stellarisRoot, "gfx", "interface", "icons", "technologies")
	categoriesDir := filepath.Join(iconsDir, "categories")

	assets := make([]Asset, 0, len(tech)+len(swaps)+len(researchAreas)+len(backgroundTextures)+len(uiTextures)+1)

	for _, icon := range tech {
		assets = append(assets, Asset{
			Name:      icon,
			Category:  CategoryTechIcons,
			SourceDDS: filepath.Join(iconsDir, icon+".dds"),
			DestPNG:   DestPNG(outputRoot, CategoryTechIcons, icon),
			DestAVIF:  DestAVIF(outputRoot, CategoryTechIcons, icon),
			Lossless:  true,
		})
	}

	for _, icon := range swaps {
		assets = append(assets, Asset{
			Name:      icon,
			Category:  CategorySwapIcons,
			SourceDDS: filepath.Join(iconsDir, icon+".dds"),
			DestPNG:   DestPNG(outputRoot, CategorySwapIcons, icon),
			DestAVIF:  DestAVIF(outputRoot, CategorySwapIcons, icon),
			Lossless:  true,
		})
	}

	for _, area := range researchAreas {
		name := "category_" + area
		assets = append(assets, Asset{
			Name:      name,
			Category:  CategoryCategoryIcons,
			SourceDDS: filepath.Join(categoriesDir, name+".dds"),
			DestPNG:   DestPNG(outputRoot, CategoryCategoryIcons, name),
			DestAVIF:  DestAVIF(outputRoot, CategoryCategoryIcons, name),
			Lossless:  true,
		})
	}

	for _, t := range backgroundTextures {
		assets = append(assets, Asset{
			Name:      t.name,
			Category:  CategoryBackgrounds,
			SourceDDS: filepath.Join(stellarisRoot, filepath.FromSlash(t.rel)),
			DestPNG:   DestPNG(outputRoot, CategoryBackgrounds, t.name),
			DestAVIF:  DestAVIF(outputRoot, CategoryBackgrounds, t.name),
			Lossless:  false,
		})
	}

	for _, t := range uiTextures {
		assets = append(assets, Asset{
			Name:      t.name,
			Category:  CategoryUI,
			SourceDDS: filepath.Join(stellarisRoot, filepath.FromSlash(t.rel)),
			DestPNG:   DestPNG(outputRoot, CategoryUI, t.name),
			DestAVIF:  DestAVIF(outputRoot, CategoryUI, t.name),
			Lossless:  false,
		})
	}

	assets = append(assets, Asset{
		Name:      checkboxSprite.name,
		Category:  CategorySprites,
		SourceDDS: filepath.Join(stellarisRoot, filepath.FromSlash(checkboxSprite.rel)),
		DestPNG:   DestPNG(outputRoot, CategorySprites, checkboxSprite.name),
		DestAVIF:  DestAVIF(outputRoot, CategorySprites, checkboxSprite.name),
		Lossless:  true,
	})

	return assets
}

func uniqueSorted(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
