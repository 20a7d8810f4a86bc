package lore

import (
	"testing"
)

type item struct {
	Name   string `yaml:"name"`
	Damage int    `yaml:"damage"`
	Armor  int    `yaml:"armor"`
	Rarity string `yaml:"rarity"`
}

func buildTestBook(t *testing.T) Lorebook {
	t.Helper()
	book, err := Register[item](NewLorebookBuilder()).Build("testdata/lorebook")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return book
}

func TestGetExactTagMatch(t *testing.T) {
	book := buildTestBook(t)

	sword, err := Get[item](book, NewTags("weapon", "sword"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sword.Name != "Iron Sword" || sword.Damage != 5 {
		t.Errorf("unexpected entry: %+v", sword)
	}
}

func TestGetMissingEntryReturnsNotFound(t *testing.T) {
	book := buildTestBook(t)

	_, err := Get[item](book, NewTags("weapon", "axe"))
	if err == nil {
		t.Fatal("expected an error for a missing tag combination")
	}
}

func TestGetAllWithTagsIntersects(t *testing.T) {
	book := buildTestBook(t)

	weapons := GetAllWithTags[item](book, NewTags("weapon"))
	if len(weapons) < 3 {
		t.Errorf("expected at least 3 weapon entries, got %d", len(weapons))
	}

	armor := GetAllWithTags[item](book, NewTags("armor"))
	if len(armor) != 1 || armor[0].Name != "Wooden Shield" {
		t.Errorf("unexpected armor set: %+v", armor)
	}
}

func TestMergeInheritsBaseFields(t *testing.T) {
	book := buildTestBook(t)

	enchanted, err := Get[item](book, NewTags("weapon", "enchanted-sword"))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if enchanted.Damage != 9 {
		t.Errorf("expected override to win, got damage %d", enchanted.Damage)
	}
	if enchanted.Rarity != "common" {
		t.Errorf("expected merged field inherited from base, got rarity %q", enchanted.Rarity)
	}
}

func TestTagsHashIsOrderIndependent(t *testing.T) {
	a := NewTags("weapon", "sword")
	b := NewTags("sword", "weapon")
	if a.Hash() != b.Hash() {
		t.Error("expected tag set hash to be independent of insertion order")
	}
}
