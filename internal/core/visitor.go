package core

// Visitor receives ledger entities during a traversal. Entities are passed
// by value and must not be retained after the traversal returns.
type Visitor interface {
	VisitBankAccount(BankAccount)
	VisitCategory(Category)
	VisitOperation(Operation)
}

// NopVisitor ignores every entity kind. Embed it and override the kinds
// a visitor cares about.
type NopVisitor struct{}

func (NopVisitor) VisitBankAccount(BankAccount) {}
func (NopVisitor) VisitCategory(Category)       {}
func (NopVisitor) VisitOperation(Operation)     {}
