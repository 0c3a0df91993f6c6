package recommend

import (
	"strings"

	"github.com/pairsell/pairsell/app/models"
)

// Gender is the coarse audience classification of a product.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

// Category is the fine-grained product category used for pairing decisions.
// Known categories are closed constants; unmatched products fall through to
// their raw product type, or CategoryOther when no type is set.
type Category string

const (
	CategoryHat       Category = "hat"
	CategoryJewelry   Category = "jewelry"
	CategoryBag       Category = "bag"
	CategorySock      Category = "sock"
	CategoryShoe      Category = "shoe"
	CategoryAccessory Category = "accessory"
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryDress     Category = "dress"
	CategorySkirt     Category = "skirt"
	CategoryOuterwear Category = "outerwear"
	CategorySwim      Category = "swim"
	CategoryUnderwear Category = "underwear"
	CategorySleepwear Category = "sleepwear"
	CategoryOther     Category = "other"
)

var maleKeywords = []string{
	"men's", "mens", "men ", " men", "male", "gentleman", "boyfriend",
	"for him", "herren",
}

var femaleKeywords = []string{
	"women's", "womens", "women ", " women", "female", "ladies", "lady",
	"girlfriend", "for her", "damen", "dress", "skirt", "bra", "blouse",
	"gown", "leggings",
}

// ClassifyGender derives the audience of a product from its title, type and
// tags. Masculine markers win over feminine ones only when feminine markers
// are absent; anything unmarked is unisex.
func ClassifyGender(p models.Product) Gender {
	text := classifierText(p)
	if containsAny(text, femaleKeywords) {
		return GenderFemale
	}
	if containsAny(text, maleKeywords) {
		return GenderMale
	}
	return GenderUnisex
}

// GenderCompatible reports whether a target may be recommended alongside a
// source. Unisex pairs with everything; male and female exclude each other
// in both directions.
func GenderCompatible(source, target Gender) bool {
	if source == GenderUnisex || target == GenderUnisex {
		return true
	}
	return source == target
}

var categoryKeywords = []struct {
	category Category
	words    []string
}{
	{CategoryHat, []string{"hat", "cap", "beanie", "beret", "fedora"}},
	{CategoryJewelry, []string{"necklace", "bracelet", "earring", "ring", "jewelry", "jewellery", "pendant", "brooch"}},
	{CategoryBag, []string{"bag", "backpack", "tote", "purse", "clutch", "wallet", "satchel"}},
	{CategorySock, []string{"sock", "stocking"}},
	{CategoryShoe, []string{"shoe", "sneaker", "boot", "sandal", "loafer", "heel", "slipper", "trainer"}},
	{CategoryAccessory, []string{"belt", "scarf", "glove", "sunglasses", "watch", "tie", "accessor", "keychain", "umbrella"}},
	{CategorySwim, []string{"swim", "bikini", "trunks", "boardshort"}},
	{CategoryUnderwear, []string{"underwear", "boxer", "brief", "bra ", "bralette", "lingerie", "panties"}},
	{CategorySleepwear, []string{"pajama", "pyjama", "sleepwear", "nightgown", "robe"}},
	{CategoryOuterwear, []string{"jacket", "coat", "parka", "blazer", "vest", "windbreaker", "cardigan"}},
	{CategoryDress, []string{"dress", "gown"}},
	{CategorySkirt, []string{"skirt"}},
	{CategoryBottom, []string{"pants", "jeans", "trousers", "shorts", "leggings", "chinos", "joggers"}},
	{CategoryTop, []string{"shirt", "t-shirt", "tee", "top", "blouse", "sweater", "hoodie", "sweatshirt", "tank", "polo", "pullover"}},
}

// ClassifyCategory maps a product onto a category by keyword-matching its
// title first and its product type second. Keyword order matters: accessory
// and specialty categories are tried before the broad garment ones, so a
// "sweater vest" resolves as outerwear before the top rule can claim it.
func ClassifyCategory(p models.Product) Category {
	title := strings.ToLower(p.Title)
	for _, entry := range categoryKeywords {
		if containsAny(title, entry.words) {
			return entry.category
		}
	}
	typeName := strings.ToLower(strings.TrimSpace(p.ProductType))
	for _, entry := range categoryKeywords {
		if containsAny(typeName, entry.words) {
			return entry.category
		}
	}
	if typeName != "" {
		return Category(typeName)
	}
	return CategoryOther
}

// IsAccessoryCategory reports whether a category belongs to the accessory
// group that is ranked first and preferred by the fallback generator.
func IsAccessoryCategory(c Category) bool {
	switch c {
	case CategoryHat, CategoryJewelry, CategoryBag, CategorySock, CategoryShoe, CategoryAccessory:
		return true
	default:
		return false
	}
}

var variantTokens = map[string]bool{
	// colors
	"black": true, "white": true, "red": true, "blue": true, "green": true,
	"navy": true, "grey": true, "gray": true, "beige": true, "brown": true,
	"pink": true, "purple": true, "yellow": true, "orange": true, "olive": true,
	"cream": true, "tan": true, "khaki": true, "burgundy": true, "charcoal": true,
	// sizes
	"xs": true, "s": true, "m": true, "l": true, "xl": true, "xxl": true, "xxxl": true,
	"small": true, "medium": true, "large": true, "mini": true,
}

// HandleRoot strips a single trailing color/size variant token from a product
// handle, so "linen-shirt-navy" and "linen-shirt-white" share the root
// "linen-shirt". Handles without a recognized variant suffix are returned
// lowercased but otherwise untouched.
func HandleRoot(handle string) string {
	h := strings.ToLower(strings.TrimSpace(handle))
	idx := strings.LastIndex(h, "-")
	if idx <= 0 || idx == len(h)-1 {
		return h
	}
	if variantTokens[h[idx+1:]] {
		return h[:idx]
	}
	return h
}

// SamePhysicalProduct reports whether two products are variant siblings of
// the same physical item.
func SamePhysicalProduct(a, b models.Product) bool {
	if a.Handle == "" || b.Handle == "" {
		return false
	}
	return HandleRoot(a.Handle) == HandleRoot(b.Handle)
}

func classifierText(p models.Product) string {
	parts := []string{p.Title, p.ProductType}
	parts = append(parts, p.TagList()...)
	return strings.ToLower(strings.Join(parts, " "))
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}
