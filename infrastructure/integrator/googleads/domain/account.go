package gadsdomain

// ChildAccount é uma conta cliente listada sob a conta gerente (MCC).
// Contas que também são gerentes ficam fora da listagem, apenas contas
// operacionais recebem sincronização de métricas.
type ChildAccount struct {
	CustomerID string
	Name       string
}
