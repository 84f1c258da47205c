// Package transfer define la máquina de estados del traslado entre almacenes.
package transfer

import "fmt"

// State es el estado de un traslado. None solo existe antes de la reserva.
type State string

const (
	None      State = "NONE"
	Reserved  State = "RESERVED"
	Shipped   State = "SHIPPED"
	Received  State = "RECEIVED"
	Cancelled State = "CANCELLED"
)

// Action es una acción solicitada sobre un traslado.
type Action string

const (
	Initiate Action = "initiate"
	Ship     Action = "ship"
	Receive  Action = "receive"
	Cancel   Action = "cancel"
)

type edge struct {
	from   State
	action Action
}

// transitions es la tabla completa; cualquier par ausente se rechaza.
var transitions = map[edge]State{
	{None, Initiate}:   Reserved,
	{Reserved, Ship}:   Shipped,
	{Reserved, Cancel}: Cancelled,
	{Shipped, Receive}: Received,
	{Shipped, Cancel}:  Cancelled,
}

// TransitionError se devuelve cuando la tabla no admite la acción.
type TransitionError struct {
	From   State
	Action Action
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transición inválida: %s desde %s", e.Action, e.From)
}

// Next devuelve el estado destino para (from, action) o un *TransitionError.
func Next(from State, action Action) (State, error) {
	to, ok := transitions[edge{from, action}]
	if !ok {
		return from, &TransitionError{From: from, Action: action}
	}
	return to, nil
}

// Parse convierte el valor persistido en State.
func Parse(s string) (State, error) {
	switch State(s) {
	case None, Reserved, Shipped, Received, Cancelled:
		return State(s), nil
	}
	return None, fmt.Errorf("estado de traslado desconocido: %q", s)
}

// Active indica si el traslado ocupa stock en origen o el cupo entrante del destino.
func (s State) Active() bool {
	return s == Reserved || s == Shipped
}

// Terminal indica que ninguna acción es válida desde s.
func (s State) Terminal() bool {
	return s == Received || s == Cancelled
}

func (s State) String() string { return string(s) }
