package recommend

import (
	"testing"

	"github.com/pairsell/pairsell/app/models"
)

func TestClassifyGender(t *testing.T) {
	tests := []struct {
		name string
		p    models.Product
		want Gender
	}{
		{"mens title", models.Product{Title: "Men's Oxford Shirt"}, GenderMale},
		{"womens title", models.Product{Title: "Women's Blazer"}, GenderFemale},
		{"dress keyword", models.Product{Title: "Summer Dress"}, GenderFemale},
		{"skirt keyword", models.Product{Title: "Pleated Skirt"}, GenderFemale},
		{"neutral", models.Product{Title: "Canvas Tote"}, GenderUnisex},
		{"male tag", models.Product{Title: "Oxford Shirt", Tags: "male,cotton"}, GenderMale},
		{"female type", models.Product{Title: "Silk Top", ProductType: "Ladies Fashion"}, GenderFemale},
	}

	for _, tt := range tests {
		if got := ClassifyGender(tt.p); got != tt.want {
			t.Fatalf("%s: ClassifyGender = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestGenderCompatibleSymmetry(t *testing.T) {
	if GenderCompatible(GenderMale, GenderFemale) {
		t.Fatal("male source must exclude female targets")
	}
	if GenderCompatible(GenderFemale, GenderMale) {
		t.Fatal("female source must exclude male targets")
	}
	for _, g := range []Gender{GenderMale, GenderFemale, GenderUnisex} {
		if !GenderCompatible(g, GenderUnisex) || !GenderCompatible(GenderUnisex, g) {
			t.Fatalf("unisex must be compatible with %q in both directions", g)
		}
	}
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		title       string
		productType string
		want        Category
	}{
		{"Wool Beanie", "", CategoryHat},
		{"Silver Pendant Necklace", "", CategoryJewelry},
		{"Leather Tote Bag", "", CategoryBag},
		{"Ankle Socks 3-Pack", "", CategorySock},
		{"Suede Chelsea Boot", "", CategoryShoe},
		{"Woven Belt", "", CategoryAccessory},
		{"Linen Shirt", "", CategoryTop},
		{"Slim Jeans", "", CategoryBottom},
		{"Wrap Dress", "", CategoryDress},
		{"Denim Jacket", "", CategoryOuterwear},
		{"Board Shorts", "", CategoryBottom},
		{"Mystery Item", "Candles", Category("candles")},
		{"Mystery Item", "", CategoryOther},
		{"Unmatched Title", "Shoes", CategoryShoe},
	}

	for _, tt := range tests {
		p := models.Product{Title: tt.title, ProductType: tt.productType}
		if got := ClassifyCategory(p); got != tt.want {
			t.Fatalf("ClassifyCategory(%q, type=%q) = %q, want %q", tt.title, tt.productType, got, tt.want)
		}
	}
}

func TestHandleRoot(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"linen-shirt-navy", "linen-shirt"},
		{"linen-shirt-white", "linen-shirt"},
		{"Linen-Shirt-XL", "linen-shirt"},
		{"leather-wallet", "leather-wallet"},
		{"leather-bag", "leather-bag"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := HandleRoot(tt.in); got != tt.want {
			t.Fatalf("HandleRoot(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSamePhysicalProduct(t *testing.T) {
	a := models.Product{Handle: "linen-shirt-navy"}
	b := models.Product{Handle: "linen-shirt-white"}
	c := models.Product{Handle: "wool-coat"}

	if !SamePhysicalProduct(a, b) {
		t.Fatal("variant siblings must be detected as the same physical product")
	}
	if SamePhysicalProduct(a, c) {
		t.Fatal("unrelated handles must not match")
	}
	if SamePhysicalProduct(models.Product{}, models.Product{}) {
		t.Fatal("empty handles must never match")
	}
}
