package assembleia

import "errors"

var (
	// ErrNotFound indica assembleia, pauta ou voto inexistente.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrInvalidState indica operação não permitida no estado atual do ciclo de vida.
	ErrInvalidState = errors.New("operação não permitida no estado atual")
	// ErrDuplicateVote indica que o eleitor já votou nesta pauta.
	ErrDuplicateVote = errors.New("voto já registrado para esta pauta")
	// ErrInvalidChoice indica opção fora da lista da pauta.
	ErrInvalidChoice = errors.New("opção inválida para esta pauta")
	// ErrForbidden indica ator sem papel administrativo.
	ErrForbidden = errors.New("acesso negado")
	// ErrValidation indica dados de entrada inválidos.
	ErrValidation = errors.New("dados inválidos")
)
