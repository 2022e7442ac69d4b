package checklist

import (
	"fmt"

	"github.com/garyjia/brokerage-backoffice/internal/domain/errs"
)

// Type identifies which transaction workflow a checklist tracks
type Type string

const (
	TypeSeller Type = "seller"
	TypeBuyer  Type = "buyer"
	TypeReform Type = "reform"
)

// Types lists every checklist type in display order
var Types = []Type{TypeSeller, TypeBuyer, TypeReform}

// String returns the string representation of the type
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the type has a catalog
func (t Type) IsValid() bool {
	_, ok := catalogs[t]
	return ok
}

// Label returns the customer-facing name of the type
func (t Type) Label() string {
	switch t {
	case TypeSeller:
		return "売主"
	case TypeBuyer:
		return "買主"
	case TypeReform:
		return "リフォーム"
	default:
		return string(t)
	}
}

// ParseType converts a raw string into a Type
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("unknown checklist type %q: %w", s, errs.ErrInvalidArgument)
	}
	return t, nil
}

// ItemDefinition is one fixed milestone in a checklist catalog
type ItemDefinition struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Order    int    `json:"order"`
}

// CatalogVersion is bumped whenever an item is added, removed or re-keyed.
// Existing checklists keep the item rows they were created with.
const CatalogVersion = 3

// Catalog tables are kept sorted by Order.
var catalogs = map[Type][]ItemDefinition{
	TypeSeller: {
		{Key: "property_inspection", Label: "物件の現況確認", Required: true, Order: 1},
		{Key: "valuation_request", Label: "査定依頼", Required: true, Order: 2},
		{Key: "valuation_report", Label: "査定書の提出", Required: true, Order: 3},
		{Key: "listing_agreement", Label: "媒介契約書の作成", Required: true, Order: 4},
		{Key: "reins_registration", Label: "レインズ登録", Required: true, Order: 5},
		{Key: "property_listing", Label: "物件情報の登録", Required: true, Order: 6},
		{Key: "flyer_and_lp", Label: "チラシ・LPの作成", Required: false, Order: 7},
		{Key: "viewing_schedule", Label: "内覧の設定", Required: false, Order: 8},
		{Key: "activity_report", Label: "販売活動報告", Required: false, Order: 9},
		{Key: "buyer_negotiation", Label: "買主との交渉", Required: true, Order: 10},
		{Key: "important_matters", Label: "重要事項説明", Required: true, Order: 11},
		{Key: "sales_contract", Label: "売買契約の締結", Required: true, Order: 12},
		{Key: "handover", Label: "引渡しの完了", Required: true, Order: 13},
	},
	TypeBuyer: {
		{Key: "requirements_hearing", Label: "購入希望条件の詳細ヒアリング", Required: true, Order: 1},
		{Key: "budget_planning", Label: "資金計画の作成", Required: true, Order: 2},
		{Key: "loan_preapproval", Label: "ローン事前審査", Required: false, Order: 3},
		{Key: "property_search", Label: "物件の検索・提案", Required: true, Order: 4},
		{Key: "viewing_schedule", Label: "内覧の設定", Required: false, Order: 5},
		{Key: "property_research", Label: "物件の詳細調査", Required: true, Order: 6},
		{Key: "purchase_application", Label: "買付証明書の提出", Required: true, Order: 7},
		{Key: "price_negotiation", Label: "価格交渉", Required: false, Order: 8},
		{Key: "important_matters", Label: "重要事項説明", Required: true, Order: 9},
		{Key: "sales_contract", Label: "売買契約の締結", Required: true, Order: 10},
		{Key: "loan_approval", Label: "ローン本審査", Required: true, Order: 11},
		{Key: "final_inspection", Label: "引渡し前の最終確認", Required: false, Order: 12},
		{Key: "settlement", Label: "残代金決済", Required: true, Order: 13},
		{Key: "handover", Label: "引渡しの完了", Required: true, Order: 14},
	},
	TypeReform: {
		{Key: "site_survey", Label: "現地調査・見積もり", Required: true, Order: 1},
		{Key: "proposal", Label: "提案書の作成", Required: true, Order: 2},
		{Key: "contract", Label: "契約の締結", Required: true, Order: 3},
		{Key: "neighbor_notice", Label: "近隣挨拶", Required: false, Order: 4},
		{Key: "construction_prep", Label: "着工準備", Required: true, Order: 5},
		{Key: "construction_start", Label: "工事の開始", Required: true, Order: 6},
		{Key: "progress_management", Label: "工事の進行管理", Required: false, Order: 7},
		{Key: "completion_inspection", Label: "完了検査", Required: true, Order: 8},
		{Key: "handover", Label: "引渡し", Required: true, Order: 9},
		{Key: "after_care", Label: "アフターケア", Required: false, Order: 10},
	},
}

// ItemsFor returns the ordered item definitions for a checklist type.
// The returned slice is a copy and may be modified by the caller.
func ItemsFor(t Type) ([]ItemDefinition, error) {
	defs, ok := catalogs[t]
	if !ok {
		return nil, fmt.Errorf("unknown checklist type %q: %w", t, errs.ErrInvalidArgument)
	}
	out := make([]ItemDefinition, len(defs))
	copy(out, defs)
	return out, nil
}

// Definition looks up a single item definition by key
func Definition(t Type, key string) (ItemDefinition, bool) {
	for _, def := range catalogs[t] {
		if def.Key == key {
			return def, true
		}
	}
	return ItemDefinition{}, false
}
