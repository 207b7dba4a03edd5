package ethrequest

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	methodOwnerOf      = "ownerOf"
	methodTransferFrom = "transferFrom"
)

// minimal ERC-721 surface used for custody
const erc721ABI = `[
	{
		"type": "function",
		"name": "ownerOf",
		"stateMutability": "view",
		"inputs": [{"name": "tokenId", "type": "uint256"}],
		"outputs": [{"name": "owner", "type": "address"}]
	},
	{
		"type": "function",
		"name": "transferFrom",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "from", "type": "address"},
			{"name": "to", "type": "address"},
			{"name": "tokenId", "type": "uint256"}
		],
		"outputs": []
	}
]`

func parseERC721() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(erc721ABI))
}
