package assembleia

import "testing"

func TestAssembleiaTransitions(t *testing.T) {
	todos := []StatusAssembleia{AssembleiaAgendada, AssembleiaEmAndamento, AssembleiaEncerrada, AssembleiaCancelada}
	legais := map[[2]StatusAssembleia]bool{
		{AssembleiaAgendada, AssembleiaEmAndamento}:  true,
		{AssembleiaAgendada, AssembleiaCancelada}:    true,
		{AssembleiaEmAndamento, AssembleiaEncerrada}: true,
		{AssembleiaEmAndamento, AssembleiaCancelada}: true,
	}
	for _, from := range todos {
		for _, to := range todos {
			want := legais[[2]StatusAssembleia{from, to}]
			if got := from.CanTransition(to); got != want {
				t.Errorf("%s -> %s: got %v want %v", from, to, got, want)
			}
		}
	}
}

func TestPautaTransitions(t *testing.T) {
	todos := []StatusPauta{PautaPendente, PautaAberta, PautaEncerrada}
	legais := map[[2]StatusPauta]bool{
		{PautaPendente, PautaAberta}:  true,
		{PautaAberta, PautaEncerrada}: true,
	}
	for _, from := range todos {
		for _, to := range todos {
			want := legais[[2]StatusPauta{from, to}]
			if got := from.CanTransition(to); got != want {
				t.Errorf("%s -> %s: got %v want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminalAndValid(t *testing.T) {
	if AssembleiaAgendada.Terminal() || AssembleiaEmAndamento.Terminal() {
		t.Fatal("estados ativos não são terminais")
	}
	if !AssembleiaEncerrada.Terminal() || !AssembleiaCancelada.Terminal() {
		t.Fatal("closed e cancelled são terminais")
	}
	if StatusAssembleia("archived").Valid() || StatusPauta("voting").Valid() {
		t.Fatal("estado desconhecido aceito")
	}
	if !VotacaoSecreta.Valid() || ModoVotacao("proxy").Valid() {
		t.Fatal("validação de modo incorreta")
	}
}

func TestAtorAdmin(t *testing.T) {
	cases := []struct {
		papeis []string
		want   bool
	}{
		{[]string{"SINDICO"}, true},
		{[]string{" admin "}, true},
		{[]string{"MORADOR"}, false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := (Ator{Papeis: tc.papeis}).Admin(); got != tc.want {
			t.Errorf("%v: got %v want %v", tc.papeis, got, tc.want)
		}
	}
}

func TestNormalizeOpcoes(t *testing.T) {
	got, err := normalizeOpcoes([]string{" Sim ", "Não", "Abstenção"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || got[0] != "Sim" {
		t.Fatalf("unexpected opcoes: %v", got)
	}

	for _, invalid := range [][]string{
		{"Sim"},
		{"Sim", " "},
		{"Sim", "sim"},
		nil,
	} {
		if _, err := normalizeOpcoes(invalid); err == nil {
			t.Errorf("%v: expected error", invalid)
		}
	}
}
