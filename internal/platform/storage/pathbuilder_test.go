package storage

import (
	"strings"
	"testing"
)

func TestBuildObjectPathProductImage(t *testing.T) {
	path, err := BuildObjectPath(PurposeProductImage, PathParams{
		SellerID: "seller-1",
		DraftID:  "draft-9",
		UploadID: "01HV5",
		FileName: "front.jpg",
	})
	if err != nil {
		t.Fatalf("BuildObjectPath returned error: %v", err)
	}
	if path != "media/sellers/seller-1/drafts/draft-9/products/01HV5/front.jpg" {
		t.Fatalf("unexpected path: %s", path)
	}
}

func TestBuildObjectPathPromoImage(t *testing.T) {
	path, err := BuildObjectPath(PurposePromoImage, PathParams{
		SellerID: "seller-1",
		DraftID:  "draft-9",
		UploadID: "01HV6",
		FileName: "banner.png",
	})
	if err != nil {
		t.Fatalf("BuildObjectPath returned error: %v", err)
	}
	if !strings.Contains(path, "/promotions/") {
		t.Fatalf("expected promotions segment, got %s", path)
	}
}

func TestBuildObjectPathRejectsTraversal(t *testing.T) {
	cases := []PathParams{
		{SellerID: "../seller", DraftID: "d", UploadID: "u", FileName: "a.jpg"},
		{SellerID: "seller", DraftID: "d", UploadID: "u", FileName: "../a.jpg"},
		{SellerID: "seller", DraftID: "d/e", UploadID: "u", FileName: "a.jpg"},
		{SellerID: "seller", DraftID: "d", UploadID: "", FileName: "a.jpg"},
	}

	for _, params := range cases {
		if _, err := BuildObjectPath(PurposeProductImage, params); err == nil {
			t.Fatalf("expected error for params %+v", params)
		}
	}
}

func TestBuildObjectPathUnknownPurpose(t *testing.T) {
	if _, err := BuildObjectPath(MediaPurpose("bogus"), PathParams{}); err == nil {
		t.Fatal("expected error for unknown purpose")
	}
}

func TestRegisterPathBuilderOverride(t *testing.T) {
	t.Cleanup(func() {
		RegisterPathBuilder(PurposeBrandLogo, buildBrandLogoPath)
	})

	RegisterPathBuilder(PurposeBrandLogo, func(params PathParams) (string, error) {
		return "custom/" + params.FileName, nil
	})

	path, err := BuildObjectPath(PurposeBrandLogo, PathParams{FileName: "logo.svg"})
	if err != nil {
		t.Fatalf("BuildObjectPath returned error: %v", err)
	}
	if path != "custom/logo.svg" {
		t.Fatalf("unexpected path: %s", path)
	}
}
