package domain

var Tables = []interface{}{
	&Product{},
	&Sale{},
	&SaleItem{},
}
