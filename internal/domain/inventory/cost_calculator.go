package inventory

import "github.com/shopspring/decimal"

// averageCostScale decimales con que se guarda el costo promedio (NUMERIC(18,6)).
const averageCostScale = 6

// CostCalculator implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockAntes * CostoAntes) + (CantEntrada * CostoEntrada)) / (StockAntes + CantEntrada)
//
// Con stock previo nulo o negativo no hay base de costo que ponderar: el nuevo
// promedio es el costo de la entrada.
func CostCalculator(stockAntes, costoAntes, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	if !stockAntes.IsPositive() {
		return costoEntrada.Round(averageCostScale)
	}
	sum := stockAntes.Add(cantEntrada)
	if !sum.IsPositive() {
		return costoEntrada.Round(averageCostScale)
	}
	num := stockAntes.Mul(costoAntes).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum).Round(averageCostScale)
}
