package usecase

import "github.com/bilans/bilans/internal/domain"

// AccountSpec describes one default chart entry. Parents are
// referenced by code and must precede their children.
type AccountSpec struct {
	Code       string
	Name       string
	Type       domain.AccountType
	ParentCode string
}

// DefaultChart returns the predefined chart of accounts seeded by
// InitializeDefaultChart. The numbering follows the Serbian class
// scheme the surrounding invoicing platform uses.
func DefaultChart() []AccountSpec {
	return []AccountSpec{
		{Code: "0", Name: "Upisani a neuplaćeni kapital i stalna imovina", Type: domain.AccountTypeAsset},
		{Code: "02", Name: "Nekretnine, postrojenja i oprema", Type: domain.AccountTypeAsset, ParentCode: "0"},
		{Code: "023", Name: "Postrojenja i oprema", Type: domain.AccountTypeAsset, ParentCode: "02"},

		{Code: "1", Name: "Zalihe", Type: domain.AccountTypeAsset},
		{Code: "13", Name: "Roba", Type: domain.AccountTypeAsset, ParentCode: "1"},
		{Code: "132", Name: "Roba u prometu na veliko", Type: domain.AccountTypeAsset, ParentCode: "13"},

		{Code: "2", Name: "Kratkoročna potraživanja i gotovina", Type: domain.AccountTypeAsset},
		{Code: "20", Name: "Potraživanja po osnovu prodaje", Type: domain.AccountTypeAsset, ParentCode: "2"},
		{Code: "202", Name: "Kupci u zemlji", Type: domain.AccountTypeAsset, ParentCode: "20"},
		{Code: "2020", Name: "Kupci u zemlji - domaći", Type: domain.AccountTypeAsset, ParentCode: "202"},
		{Code: "24", Name: "Gotovinski ekvivalenti i gotovina", Type: domain.AccountTypeAsset, ParentCode: "2"},
		{Code: "241", Name: "Tekući (poslovni) računi", Type: domain.AccountTypeAsset, ParentCode: "24"},

		{Code: "3", Name: "Kapital", Type: domain.AccountTypeEquity},
		{Code: "30", Name: "Osnovni kapital", Type: domain.AccountTypeEquity, ParentCode: "3"},
		{Code: "34", Name: "Neraspoređeni dobitak", Type: domain.AccountTypeEquity, ParentCode: "3"},

		{Code: "4", Name: "Dugoročna rezervisanja i obaveze", Type: domain.AccountTypeLiability},
		{Code: "43", Name: "Obaveze iz poslovanja", Type: domain.AccountTypeLiability, ParentCode: "4"},
		{Code: "433", Name: "Dobavljači u zemlji", Type: domain.AccountTypeLiability, ParentCode: "43"},
		{Code: "47", Name: "Obaveze za PDV", Type: domain.AccountTypeLiability, ParentCode: "4"},
		{Code: "470", Name: "Obaveze za PDV po izdatim fakturama", Type: domain.AccountTypeLiability, ParentCode: "47"},

		{Code: "5", Name: "Rashodi", Type: domain.AccountTypeExpense},
		{Code: "51", Name: "Troškovi materijala i energije", Type: domain.AccountTypeExpense, ParentCode: "5"},
		{Code: "53", Name: "Troškovi proizvodnih usluga", Type: domain.AccountTypeExpense, ParentCode: "5"},
		{Code: "55", Name: "Nematerijalni troškovi", Type: domain.AccountTypeExpense, ParentCode: "5"},

		{Code: "6", Name: "Prihodi", Type: domain.AccountTypeRevenue},
		{Code: "60", Name: "Prihodi od prodaje robe", Type: domain.AccountTypeRevenue, ParentCode: "6"},
		{Code: "61", Name: "Prihodi od prodaje proizvoda i usluga", Type: domain.AccountTypeRevenue, ParentCode: "6"},
		{Code: "612", Name: "Prihodi od prodaje usluga u zemlji", Type: domain.AccountTypeRevenue, ParentCode: "61"},
	}
}
