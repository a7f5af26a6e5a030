package assembleia

// StatusAssembleia é o estado do ciclo de vida de uma assembleia.
type StatusAssembleia string

const (
	AssembleiaAgendada    StatusAssembleia = "scheduled"
	AssembleiaEmAndamento StatusAssembleia = "in_progress"
	AssembleiaEncerrada   StatusAssembleia = "closed"
	AssembleiaCancelada   StatusAssembleia = "cancelled"
)

// StatusPauta é o estado do ciclo de vida de uma pauta.
type StatusPauta string

const (
	PautaPendente  StatusPauta = "pending"
	PautaAberta    StatusPauta = "open"
	PautaEncerrada StatusPauta = "closed"
)

// ModoVotacao define como a pauta é exibida; não altera a apuração.
type ModoVotacao string

const (
	VotacaoAberta  ModoVotacao = "open"
	VotacaoSecreta ModoVotacao = "secret"
)

// Apenas as transições listadas aqui são legais.
var assembleiaTransicoes = map[StatusAssembleia][]StatusAssembleia{
	AssembleiaAgendada:    {AssembleiaEmAndamento, AssembleiaCancelada},
	AssembleiaEmAndamento: {AssembleiaEncerrada, AssembleiaCancelada},
}

var pautaTransicoes = map[StatusPauta][]StatusPauta{
	PautaPendente: {PautaAberta},
	PautaAberta:   {PautaEncerrada},
}

// Valid indica se o valor pertence ao conjunto de estados conhecidos.
func (s StatusAssembleia) Valid() bool {
	switch s {
	case AssembleiaAgendada, AssembleiaEmAndamento, AssembleiaEncerrada, AssembleiaCancelada:
		return true
	}
	return false
}

// Terminal indica estados sem saída.
func (s StatusAssembleia) Terminal() bool {
	return s == AssembleiaEncerrada || s == AssembleiaCancelada
}

// CanTransition indica se a transição s -> to é legal.
func (s StatusAssembleia) CanTransition(to StatusAssembleia) bool {
	for _, next := range assembleiaTransicoes[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid indica se o valor pertence ao conjunto de estados conhecidos.
func (s StatusPauta) Valid() bool {
	switch s {
	case PautaPendente, PautaAberta, PautaEncerrada:
		return true
	}
	return false
}

// CanTransition indica se a transição s -> to é legal.
func (s StatusPauta) CanTransition(to StatusPauta) bool {
	for _, next := range pautaTransicoes[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Valid indica modo conhecido.
func (m ModoVotacao) Valid() bool {
	return m == VotacaoAberta || m == VotacaoSecreta
}
