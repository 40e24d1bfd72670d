package postgres

import (
	"database/sql"
)

// Queryer é o subconjunto de operações comum a *sql.DB e *sql.Tx. As
// operações de reconciliação rodam dentro de uma transação por conta, e os
// repositórios as recebem por aqui para não saber em qual dos dois estão.
type Queryer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}
