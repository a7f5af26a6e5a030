package assembleia

import (
	"math"
	"testing"

	"github.com/google/uuid"
)

func pautaTeste(opcoes ...string) Pauta {
	return Pauta{ID: uuid.New(), Titulo: "Pintura da fachada", Opcoes: opcoes, Status: PautaAberta}
}

func votos(p Pauta, escolhas ...string) []Voto {
	out := make([]Voto, 0, len(escolhas))
	for _, e := range escolhas {
		out = append(out, Voto{ID: uuid.New(), PautaID: p.ID, EleitorID: uuid.New(), Escolha: e})
	}
	return out
}

func TestApurarMaioria(t *testing.T) {
	p := pautaTeste("Sim", "Não", "Abstenção")
	res := Apurar(p, votos(p, "Sim", "Não", "Sim"))

	if res.Total != 3 {
		t.Fatalf("total: got %d", res.Total)
	}
	if res.Vencedora == nil || *res.Vencedora != "Sim" || res.Empate {
		t.Fatalf("vencedora: got %v empate=%v", res.Vencedora, res.Empate)
	}
	want := []struct {
		opcao string
		votos int
		pct   float64
	}{{"Sim", 2, 66.7}, {"Não", 1, 33.3}, {"Abstenção", 0, 0}}
	for i, w := range want {
		got := res.Opcoes[i]
		if got.Opcao != w.opcao || got.Votos != w.votos {
			t.Errorf("opção %d: got %+v", i, got)
		}
		if math.Abs(got.Percentual-w.pct) > 0.05 {
			t.Errorf("%s percentual: got %.3f", got.Opcao, got.Percentual)
		}
	}
}

func TestApurarSemVotos(t *testing.T) {
	p := pautaTeste("Sim", "Não")
	res := Apurar(p, nil)

	if res.Total != 0 || res.Vencedora != nil || res.Empate {
		t.Fatalf("unexpected result: %+v", res)
	}
	for _, o := range res.Opcoes {
		if o.Votos != 0 || o.Percentual != 0 {
			t.Fatalf("opção com contagem: %+v", o)
		}
	}
	if len(res.Opcoes) != 2 {
		t.Fatalf("todas as opções devem aparecer: %+v", res.Opcoes)
	}
}

func TestApurarEmpatePrimeiraNaOrdem(t *testing.T) {
	p := pautaTeste("A", "B", "C")
	res := Apurar(p, votos(p, "B", "A", "C", "B", "A"))

	if res.Vencedora == nil || *res.Vencedora != "A" {
		t.Fatalf("vencedora: got %v", res.Vencedora)
	}
	if !res.Empate {
		t.Fatal("empate deveria ser sinalizado")
	}
}

func TestApurarEmpateAbaixoDoTopoNaoSinaliza(t *testing.T) {
	p := pautaTeste("A", "B", "C")
	res := Apurar(p, votos(p, "A", "A", "B", "C"))
	if res.Empate {
		t.Fatal("empate fora do topo não conta")
	}
	if *res.Vencedora != "A" {
		t.Fatalf("vencedora: got %s", *res.Vencedora)
	}
}

func TestApurarIgnoraOpcaoDesconhecida(t *testing.T) {
	p := pautaTeste("Sim", "Não")
	res := Apurar(p, votos(p, "Sim", "Talvez"))

	soma := 0
	for _, o := range res.Opcoes {
		soma += o.Votos
	}
	if res.Total != 1 || soma != res.Total {
		t.Fatalf("total %d soma %d", res.Total, soma)
	}
}

func TestApurarPercentuaisSomamCem(t *testing.T) {
	p := pautaTeste("A", "B", "C")
	res := Apurar(p, votos(p, "A", "B", "C", "A", "B", "C", "A"))

	soma := 0.0
	for _, o := range res.Opcoes {
		soma += o.Percentual
	}
	if math.Abs(soma-100) > 1e-9 {
		t.Fatalf("soma dos percentuais: %f", soma)
	}
}
