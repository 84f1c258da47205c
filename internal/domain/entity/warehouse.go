package entity

import "time"

// Warehouse es un almacén (entrepôt) de un centro óptico. Cada almacén tiene sus propias
// filas de inventario; un producto presente en dos almacenes son dos InventoryRecord.
type Warehouse struct {
	ID       string
	CenterID string
	Code     string // único por centro, p. ej. "BOUT-01"
	Name     string
	Address  string
	// Active=false: el almacén sigue visible en el historial pero no recibe nuevos traslados ni entradas.
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Label devuelve "CODE - Nombre" para mensajes y documentos.
func (w *Warehouse) Label() string {
	if w.Code == "" {
		return w.Name
	}
	return w.Code + " - " + w.Name
}
