package dto

import (
	"time"

	"github.com/jhoicas/Inventario-pos/internal/domain/entity"
)

// CreateLocationRequest entrada para crear una ubicación (sucursal o bodega).
type CreateLocationRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Address string `json:"address" validate:"max=300"`
}

// LocationResponse salida de una ubicación.
type LocationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocationListResponse lista paginada de ubicaciones.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// LocationFromEntity mapea la entidad a la salida HTTP.
func LocationFromEntity(l *entity.Location) LocationResponse {
	return LocationResponse{ID: l.ID, Name: l.Name, Address: l.Address, CreatedAt: l.CreatedAt, UpdatedAt: l.UpdatedAt}
}
