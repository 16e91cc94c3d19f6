package models

import (
	"errors"
	"fmt"
	"strings"

	"ltv-dashboard/pkg/table"

	"github.com/agnivade/levenshtein"
)

/*
LOAD → schéma de la table clients (une ligne = un client).
*/

// Colonnes de la table clients.
const (
	ColCustomerID         = "customer_id"
	ColAgeGroup           = "age_group"
	ColGender             = "gender"
	ColCustomerCountry    = "customer_country"
	ColStoreCountry       = "store_country"
	ColFirstPaymentMethod = "first_payment_method"
	ColFirstCurrency      = "first_currency"
	ColFirstPurchaseSum   = "first_purchase_sum"
	ColFirstPurchaseProds = "first_purchase_prods_cnt"
	ColFirstSumGroup      = "first_purchase_sum_group"
	ColFirstProdsGroup    = "first_purchase_prods_cnt_group"
	ColCohortMonth        = "cohort_month"
	ColReturnedCustomer   = "returned_customer"
	ColNextSum            = "next_sum"
	ColNextPurchasesCnt   = "next_purchases_cnt"
)

// CustomerSchema est l'ensemble fixe des colonnes attendues en entrée.
var CustomerSchema = []table.Spec{
	{Name: ColCustomerID, Kind: table.String},
	{Name: ColAgeGroup, Kind: table.String},
	{Name: ColGender, Kind: table.String},
	{Name: ColCustomerCountry, Kind: table.String},
	{Name: ColStoreCountry, Kind: table.String},
	{Name: ColFirstPaymentMethod, Kind: table.String},
	{Name: ColFirstCurrency, Kind: table.String},
	{Name: ColFirstPurchaseSum, Kind: table.Number},
	{Name: ColFirstPurchaseProds, Kind: table.Number},
	{Name: ColFirstSumGroup, Kind: table.String},
	{Name: ColFirstProdsGroup, Kind: table.String},
	{Name: ColCohortMonth, Kind: table.String},
	{Name: ColReturnedCustomer, Kind: table.Bool},
	{Name: ColNextSum, Kind: table.Number},
	{Name: ColNextPurchasesCnt, Kind: table.Number},
}

/*
COMPUTE → dimensions de découpage et formes de graphique
*/

// Dimension est une colonne de découpage.
type Dimension string

const (
	AgeGroup           Dimension = ColAgeGroup
	Gender             Dimension = ColGender
	FirstPaymentMethod Dimension = ColFirstPaymentMethod
	FirstCurrency      Dimension = ColFirstCurrency
	CustomerCountry    Dimension = ColCustomerCountry
	FirstPurchaseValue Dimension = ColFirstSumGroup
	FirstPurchaseItems Dimension = ColFirstProdsGroup
	StoreCountry       Dimension = ColStoreCountry
)

// Dimensions dans l'ordre d'affichage des menus.
var Dimensions = []Dimension{
	AgeGroup,
	Gender,
	FirstPaymentMethod,
	FirstCurrency,
	CustomerCountry,
	FirstPurchaseValue,
	FirstPurchaseItems,
	StoreCountry,
}

var dimensionLabels = map[Dimension]string{
	AgeGroup:           "Customer Age",
	Gender:             "Customer Gender",
	FirstPaymentMethod: "First purchase payment method",
	FirstCurrency:      "First purchase currency",
	CustomerCountry:    "Customer Country",
	FirstPurchaseValue: "First purchases value",
	FirstPurchaseItems: "First purchases items number",
	StoreCountry:       "Stores country",
}

// Label renvoie le libellé lisible ; à défaut, la clé elle-même.
func (d Dimension) Label() string {
	if l, ok := dimensionLabels[d]; ok {
		return l
	}
	return string(d)
}

func (d Dimension) Column() string { return string(d) }

var ErrUnknownDimension = errors.New("unknown dimension")

// ParseDimension accepte une clé ou un libellé (insensible à la casse).
func ParseDimension(s string) (Dimension, error) {
	s = strings.TrimSpace(s)
	for _, d := range Dimensions {
		if strings.EqualFold(s, string(d)) || strings.EqualFold(s, d.Label()) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownDimension, s, closestDimension(s))
}

func closestDimension(s string) Dimension {
	best := Dimensions[0]
	bestDist := -1
	for _, d := range Dimensions {
		dist := levenshtein.ComputeDistance(strings.ToLower(s), string(d))
		if bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

// ChartKind est la forme de graphique associée à un résultat.
type ChartKind string

const (
	BarChart  ChartKind = "bar"
	LineChart ChartKind = "line"
	PieChart  ChartKind = "pie"
)

/*
CONFIG → paramètres du calcul batch
*/

// RunConfig contient les paramètres passés au calcul batch.
type RunConfig struct {
	Dimensions []Dimension // vide = toutes
	Verbose    bool        // logs détaillés
	Progress   bool        // barre de progression
}

/*
TESTS → préréglages des tests statistiques
*/

// Issue testée par les menus : client revenu ou non.
const (
	TestOutcome      = ColReturnedCustomer
	TestOutcomeLabel = "Returned customer"
)

// ChiSquarePreset : une entrée du sous-menu chi-deux.
type ChiSquarePreset struct {
	Name      string
	Dimension Dimension
}

var ChiSquarePresets = []ChiSquarePreset{
	{Name: "By countries", Dimension: CustomerCountry},
	{Name: "By payment methods", Dimension: FirstPaymentMethod},
}

// TTestDimension : catégories proposées au t-test.
const TTestDimension = CustomerCountry
