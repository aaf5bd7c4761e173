package entity

import "time"

// Location representa una sucursal o bodega donde se guarda stock.
// En ventas, BranchID de la venta es el LocationID de los movimientos.
type Location struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
