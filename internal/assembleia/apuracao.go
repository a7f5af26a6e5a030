package assembleia

import "github.com/google/uuid"

// OpcaoApurada traz contagem e percentual de uma opção.
type OpcaoApurada struct {
	Opcao      string  `json:"opcao"`
	Votos      int     `json:"votos"`
	Percentual float64 `json:"percentual"`
}

// Apuracao é o resultado derivado de uma pauta; nunca é persistida.
type Apuracao struct {
	PautaID   uuid.UUID      `json:"pauta_id"`
	Titulo    string         `json:"titulo"`
	Status    StatusPauta    `json:"status"`
	Total     int            `json:"total"`
	Opcoes    []OpcaoApurada `json:"opcoes"`
	Vencedora *string        `json:"vencedora"`
	Empate    bool           `json:"empate"`
}

// Apurar conta os votos por opção na ordem declarada da pauta.
//
// Sem votos não há vencedora. Em empate no topo vence a primeira opção
// empatada na ordem declarada e Empate fica true.
func Apurar(p Pauta, votos []Voto) Apuracao {
	contagem := make(map[string]int, len(p.Opcoes))
	total := 0
	for _, v := range votos {
		if !p.contemOpcao(v.Escolha) {
			continue
		}
		contagem[v.Escolha]++
		total++
	}

	res := Apuracao{
		PautaID: p.ID,
		Titulo:  p.Titulo,
		Status:  p.Status,
		Total:   total,
		Opcoes:  make([]OpcaoApurada, 0, len(p.Opcoes)),
	}

	maior := -1
	for _, opcao := range p.Opcoes {
		n := contagem[opcao]
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		res.Opcoes = append(res.Opcoes, OpcaoApurada{Opcao: opcao, Votos: n, Percentual: pct})

		switch {
		case n > maior:
			maior = n
			nome := opcao
			res.Vencedora = &nome
			res.Empate = false
		case n == maior:
			res.Empate = true
		}
	}

	if total == 0 {
		res.Vencedora = nil
		res.Empate = false
	}
	return res
}
