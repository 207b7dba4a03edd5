package main

import (
	"context"
	"log"

	"github.com/citizenwallet/custody/internal/config"
	"github.com/citizenwallet/custody/internal/services/ethrequest"
	"github.com/citizenwallet/custody/internal/signer"
	"github.com/citizenwallet/custody/pkg/custody"
	"github.com/ethereum/go-ethereum/common"
	flag "github.com/spf13/pflag"
)

// prints the admin wallet derived from the configured key, and optionally who holds a token
func main() {
	env := flag.String("env", "", "path to .env file")

	token := flag.String("token", "", "token id to look up")

	flag.Parse()

	ctx := context.Background()

	conf, err := config.New(ctx, *env)
	if err != nil {
		log.Fatal(err)
	}

	evm, err := ethrequest.NewEthService(ctx, conf.RPCURL, common.HexToAddress(conf.NFTContractAddress), conf.OwnerReadRetries)
	if err != nil {
		log.Fatal(err)
	}
	defer evm.Close()

	chid, err := evm.ChainID(ctx)
	if err != nil {
		log.Fatal(err)
	}

	sig, err := signer.New(conf.AdminPrivateKey, chid)
	if err != nil {
		log.Fatal(err)
	}

	if err := sig.SelfCheck(); err != nil {
		log.Fatal(err)
	}

	log.Default().Printf("chain id: %s\n", chid.String())
	log.Default().Printf("admin wallet: %s\n", sig.Address().Hex())

	if *token == "" {
		return
	}

	id, err := custody.ParseTokenID(*token)
	if err != nil {
		log.Fatal(err)
	}

	owner, err := evm.OwnerOf(ctx, id.Big())
	if err != nil {
		log.Fatal(err)
	}

	log.Default().Printf("token %s owner: %s\n", id.String(), owner.Hex())
	log.Default().Printf("in custody: %v\n", owner == sig.Address())
}
